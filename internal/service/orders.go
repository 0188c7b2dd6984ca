// Package service implements the business workflows on top of the
// storage layer: order lifecycle, payment processing, notification
// fan-out, authentication and catalog reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

var (
	// ErrForbidden is returned when the caller's roles fail the
	// operation's allow-list or ownership check.
	ErrForbidden = errors.New("access denied")

	// ErrNoItems is returned for an order creation with an empty item list.
	ErrNoItems = errors.New("order requires at least one item")

	// ErrInvalidQuantity is returned when a creation item does not carry a
	// positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// OrderService owns the order aggregate's lifecycle.
type OrderService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewOrderService(store *storage.Store, notifier *Notifier) *OrderService {
	return &OrderService{store: store, notifier: notifier}
}

// Create places a new pending order for the user. Unit prices are captured
// from the products at attach time; the total is derived before the
// aggregate commits in one transaction. Kitchen staff are notified after
// the commit, best-effort.
func (s *OrderService) Create(ctx context.Context, user *domain.User, items []ItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	order := domain.NewOrder(user.ID)
	for _, in := range items {
		if in.Quantity < 1 {
			return nil, fmt.Errorf("product %d: %w", in.ProductID, ErrInvalidQuantity)
		}
		product, err := s.store.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", in.ProductID, err)
		}
		if product.Price.IsNegative() {
			slog.WarnContext(ctx, "product has negative price, clamping to zero",
				"product_id", product.ID, "price", product.Price)
		}
		order.Items = append(order.Items, *domain.NewOrderItem(product, in.Quantity))
	}
	order.CalculateTotal()

	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		return q.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created", "order_id", order.ID, "total", order.Total)
	s.notifier.OrderCreated(ctx, order, user.Email)
	return order, nil
}

// Get returns one order. Owners see their own orders; staff see any.
func (s *OrderService) Get(ctx context.Context, user *domain.User, id int64) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOrderAccess(user, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListAll returns every order, newest first, optionally filtered by
// status. Staff only.
func (s *OrderService) ListAll(ctx context.Context, user *domain.User, status domain.Status) ([]*domain.Order, error) {
	if !user.IsStaff() {
		return nil, ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.store.ListOrders(ctx, status)
}

// ListMine returns the caller's own orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, user *domain.User) ([]*domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, user.ID)
}

// UpdateStatus writes the new status (enum-checked, no predecessor
// validation) and fans out notifications after the commit. Staff only.
func (s *OrderService) UpdateStatus(ctx context.Context, user *domain.User, id int64, status domain.Status) (*domain.Order, error) {
	if !user.IsStaff() {
		return nil, ErrForbidden
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.SetStatus(status); err != nil {
		return nil, err
	}
	order.Touch(time.Now())

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status updated", "order_id", order.ID, "status", order.Status)
	s.notifier.StatusChanged(ctx, order)
	return order, nil
}

// UpdateItemQuantity changes one line item's quantity. A quantity below 1
// is an implicit removal. The order total is recomputed in the same
// transaction; if no items remain the order cancels itself.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, user *domain.User, orderID, itemID int64, quantity int) (*domain.Order, error) {
	order, idx, err := s.itemForMutation(ctx, user, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return s.removeItemAt(ctx, order, idx)
	}

	order.Items[idx].SetQuantity(quantity)
	order.CalculateTotal()
	order.Touch(time.Now())

	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateOrderItem(ctx, &order.Items[idx]); err != nil {
			return err
		}
		return q.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RemoveItem deletes one line item with the same guards and recompute
// semantics as UpdateItemQuantity.
func (s *OrderService) RemoveItem(ctx context.Context, user *domain.User, orderID, itemID int64) (*domain.Order, error) {
	order, idx, err := s.itemForMutation(ctx, user, orderID, itemID)
	if err != nil {
		return nil, err
	}
	return s.removeItemAt(ctx, order, idx)
}

// Delete destroys an order; line items and invoice cascade away.
func (s *OrderService) Delete(ctx context.Context, user *domain.User, id int64) error {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOrderAccess(user, order); err != nil {
		return err
	}
	return s.store.DeleteOrder(ctx, id)
}

// itemForMutation loads the order, checks access and modifiability, and
// locates the item. All rejections happen here, before any write.
func (s *OrderService) itemForMutation(ctx context.Context, user *domain.User, orderID, itemID int64) (*domain.Order, int, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	if err := authorizeOrderAccess(user, order); err != nil {
		return nil, 0, err
	}
	if !order.CanBeModified() {
		return nil, 0, domain.ErrNotModifiable
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return order, i, nil
		}
	}
	return nil, 0, fmt.Errorf("order item %d: %w", itemID, storage.ErrNotFound)
}

func (s *OrderService) removeItemAt(ctx context.Context, order *domain.Order, idx int) (*domain.Order, error) {
	removed := order.Items[idx]
	order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
	order.CalculateTotal()
	if len(order.Items) == 0 {
		// Removing the last item empties the order: it cancels itself
		// with a zero total.
		if err := order.SetStatus(domain.StatusCancelled); err != nil {
			return nil, err
		}
	}
	order.Touch(time.Now())

	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.DeleteOrderItem(ctx, order.ID, removed.ID); err != nil {
			return err
		}
		return q.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func authorizeOrderAccess(user *domain.User, order *domain.Order) error {
	if order.UserID == user.ID || user.IsStaff() {
		return nil
	}
	return ErrForbidden
}
