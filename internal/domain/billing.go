package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is an immutable snapshot of an order's total, generated exactly
// once when the payment succeeds.
type Invoice struct {
	ID        int64
	OrderID   int64
	Number    string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Payment records one processed payment attempt against an order.
type Payment struct {
	ID        int64
	OrderID   int64
	UserID    int64
	Reference string
	Method    string
	IsPartial bool
	Amount    decimal.Decimal
	CreatedAt time.Time
}
