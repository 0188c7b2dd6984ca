package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

var (
	// ErrAlreadyPaid rejects a second payment for the same order.
	ErrAlreadyPaid = errors.New("order already paid")

	// ErrPaymentDeclined surfaces a refused authorization. The order is
	// left untouched.
	ErrPaymentDeclined = errors.New("payment declined by bank")
)

// paymentTolerance is the absolute difference allowed between the
// submitted amount and the order total.
var paymentTolerance = decimal.NewFromFloat(0.01)

// AmountMismatchError reports a submitted amount outside the tolerance.
type AmountMismatchError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch. expected: %s, got: %s",
		e.Expected.StringFixed(2), e.Got.StringFixed(2))
}

// Receipt is the result of a successful payment.
type Receipt struct {
	OrderID       int64
	Status        domain.Status
	Amount        decimal.Decimal
	Reference     string
	PaymentStatus string
	Timestamp     time.Time
}

// PaymentService validates payment eligibility, simulates processor
// approval and transitions the order in a single commit.
type PaymentService struct {
	store *storage.Store
}

func NewPaymentService(store *storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// Process accepts a payment for an order. The entry guard requires the
// order not to be paid yet and the amount to match the stored total
// within 0.01. On success the order becomes paid, the invoice is created
// if absent, and the payment row is recorded — all in one transaction.
func (s *PaymentService) Process(ctx context.Context, user *domain.User, orderID int64, amount decimal.Decimal, method string) (*Receipt, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOrderAccess(user, order); err != nil {
		return nil, err
	}
	if order.Status == domain.StatusPaid {
		return nil, ErrAlreadyPaid
	}
	if order.Total.Sub(amount).Abs().GreaterThan(paymentTolerance) {
		return nil, &AmountMismatchError{Expected: order.Total, Got: amount}
	}
	if !s.authorize(ctx, order, amount) {
		return nil, ErrPaymentDeclined
	}

	now := time.Now().UTC()
	if err := order.SetStatus(domain.StatusPaid); err != nil {
		return nil, err
	}
	order.Touch(now)

	var invoice *domain.Invoice
	if order.Invoice == nil {
		if invoice, err = order.GenerateInvoice(now); err != nil {
			return nil, err
		}
	}

	payment := &domain.Payment{
		OrderID:   order.ID,
		UserID:    user.ID,
		Reference: uuid.NewString(),
		Method:    method,
		Amount:    amount.Round(2),
		CreatedAt: now,
	}

	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateOrder(ctx, order); err != nil {
			return err
		}
		if invoice != nil {
			if err := q.CreateInvoice(ctx, invoice); err != nil {
				return err
			}
		}
		return q.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment processed",
		"order_id", order.ID, "amount", payment.Amount, "reference", payment.Reference)

	return &Receipt{
		OrderID:       order.ID,
		Status:        order.Status,
		Amount:        order.Total,
		Reference:     payment.Reference,
		PaymentStatus: "completed",
		Timestamp:     now,
	}, nil
}

// Status returns the payment-relevant status of an order.
func (s *PaymentService) Status(ctx context.Context, orderID int64) (domain.Status, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// authorize simulates processor approval. It always approves today; this
// is the integration point for a real payment processor.
func (s *PaymentService) authorize(_ context.Context, _ *domain.Order, _ decimal.Decimal) bool {
	return true
}
