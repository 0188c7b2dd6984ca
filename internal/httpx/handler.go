// Package httpx exposes the ordering system over HTTP: JSON request
// decoding, bearer-token authentication and the mapping from service
// errors to status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/service"
	"github.com/restoflow/restoflow/internal/storage"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	auth     *service.AuthService
	users    *service.UserService
	catalog  *service.CatalogService
	orders   *service.OrderService
	payments *service.PaymentService
	notifier *service.Notifier
	tables   *service.TableService
}

func NewHandler(
	auth *service.AuthService,
	users *service.UserService,
	catalog *service.CatalogService,
	orders *service.OrderService,
	payments *service.PaymentService,
	notifier *service.Notifier,
	tables *service.TableService,
) *Handler {
	return &Handler{
		auth:     auth,
		users:    users,
		catalog:  catalog,
		orders:   orders,
		payments: payments,
		notifier: notifier,
		tables:   tables,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeServiceError translates the error taxonomy of the service layer
// into HTTP status codes. Unmapped errors become an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var mismatch *service.AmountMismatchError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, storage.ErrInUse),
		errors.Is(err, domain.ErrInvoiceExists):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.As(err, &mismatch):
		writeError(w, http.StatusBadRequest, "amount_mismatch", err.Error())
	case errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrPaymentDeclined),
		errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidVote),
		errors.Is(err, service.ErrSelfDelete),
		errors.Is(err, service.ErrTableOccupied),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNotModifiable):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}
