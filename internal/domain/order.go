// Package domain holds the entities of the ordering system: users, the
// product catalog, the order aggregate with its line items, invoices,
// payments and notifications.
//
// An order and its items form one consistency boundary: every item
// mutation recomputes the item subtotal immediately, and the order total
// is always derived from the items before anything is persisted.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists every value accepted by Order.SetStatus.
var AllStatuses = []Status{
	StatusPending,
	StatusPaid,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusCancelled,
}

// statusLabels maps each status to its customer-facing French label.
var statusLabels = map[Status]string{
	StatusPending:   "En attente",
	StatusPaid:      "Payée",
	StatusPreparing: "En préparation",
	StatusReady:     "Prête",
	StatusCompleted: "Terminée",
	StatusCancelled: "Annulée",
}

// Valid reports whether s is one of the six allowed statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the translated label for s, falling back to the raw value.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var (
	ErrInvalidStatus = errors.New("invalid order status")
	ErrNegativeTotal = errors.New("total cannot be negative")
	ErrInvoiceExists = errors.New("invoice already exists for this order")
	ErrNotModifiable = errors.New("order can no longer be modified")
)

// Order is the aggregate root: a mutable status, an owned collection of
// line items and a total derived from them.
type Order struct {
	ID        int64
	UserID    int64
	Status    Status
	Total     decimal.Decimal
	Items     []OrderItem
	Invoice   *Invoice
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewOrder returns a pending order with a zero total for the given owner.
func NewOrder(userID int64) *Order {
	return &Order{
		UserID:    userID,
		Status:    StatusPending,
		Total:     decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
}

// SetStatus assigns a new status, rejecting values outside the enum.
func (o *Order) SetStatus(s Status) error {
	if !s.Valid() {
		return ErrInvalidStatus
	}
	o.Status = s
	return nil
}

// SetTotal assigns the total directly. Negative values fail validation;
// the stored value keeps two-decimal precision.
func (o *Order) SetTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return ErrNegativeTotal
	}
	o.Total = total.Round(2)
	return nil
}

// CalculateTotal derives the total from the item subtotals. A negative sum
// should be impossible given the subtotal invariant but is clamped to zero
// rather than propagated.
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total.Round(2)
}

// CanBeModified reports whether items may still be added, changed or
// removed. Only pending and paid orders are open for modification.
func (o *Order) CanBeModified() bool {
	return o.Status == StatusPending || o.Status == StatusPaid
}

// Touch stamps the optional update timestamp.
func (o *Order) Touch(now time.Time) {
	t := now.UTC()
	o.UpdatedAt = &t
}

// GenerateInvoice snapshots the current total into a new invoice. At most
// one invoice may exist per order; a second attempt is a conflict.
func (o *Order) GenerateInvoice(now time.Time) (*Invoice, error) {
	if o.Invoice != nil {
		return nil, ErrInvoiceExists
	}
	inv := &Invoice{
		OrderID:   o.ID,
		Number:    uuid.NewString(),
		Amount:    o.Total,
		CreatedAt: now.UTC(),
	}
	o.Invoice = inv
	return inv, nil
}

// OrderItem is one line of an order: a product reference, a quantity and
// the unit price captured when the product was attached.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewOrderItem builds a line item capturing the product's current price.
// A missing or negative product price is clamped to zero.
func NewOrderItem(product *Product, quantity int) *OrderItem {
	price := product.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	item := &OrderItem{
		ProductID: product.ID,
		Quantity:  quantity,
	}
	item.SetUnitPrice(price)
	return item
}

// SetQuantity updates the quantity and recomputes the subtotal.
func (i *OrderItem) SetQuantity(quantity int) {
	i.Quantity = quantity
	i.recalcSubtotal()
}

// SetUnitPrice updates the captured unit price and recomputes the subtotal.
func (i *OrderItem) SetUnitPrice(price decimal.Decimal) {
	i.UnitPrice = price
	i.recalcSubtotal()
}

// recalcSubtotal keeps the subtotal consistent with quantity × unit price.
// It is the only way the subtotal changes.
func (i *OrderItem) recalcSubtotal() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}
