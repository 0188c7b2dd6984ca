package httpx

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/restoflow/restoflow/internal/domain"
)

// ProcessPayment settles an order. The submitted amount must match the
// stored total within a cent.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OrderID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "order_id is required")
		return
	}

	receipt, err := h.payments.Process(r.Context(), user, req.OrderID, decimal.NewFromFloat(req.Amount), req.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PaymentResponse{
		OrderID:       receipt.OrderID,
		Status:        string(receipt.Status),
		Amount:        receipt.Amount.StringFixed(2),
		PaymentStatus: receipt.PaymentStatus,
		Reference:     receipt.Reference,
		Timestamp:     receipt.Timestamp.Format(time.RFC3339),
	})
}

// PaymentStatus reports whether an order has been paid.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustUser(w, r); !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	status, err := h.payments.Status(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentStatusResponse{
		OrderID: orderID,
		Status:  string(status),
		Paid:    status != domain.StatusPending && status != domain.StatusCancelled,
	})
}
