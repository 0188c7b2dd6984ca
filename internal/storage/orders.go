package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/restoflow/restoflow/internal/domain"
)

// CreateOrder inserts an order and all of its line items. Call inside
// WithTx so the aggregate commits as one unit.
func (q *Queries) CreateOrder(ctx context.Context, o *domain.Order) error {
	const stmt = `
		INSERT INTO orders (user_id, status, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		o.UserID, string(o.Status), o.Total.String(), formatTime(o.CreatedAt), nullableTime(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create order: %w", err)
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := q.CreateOrderItem(ctx, &o.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// CreateOrderItem inserts one line item for an existing order.
func (q *Queries) CreateOrderItem(ctx context.Context, item *domain.OrderItem) error {
	const stmt = `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice.String(), item.Subtotal.String())
	if err != nil {
		return fmt.Errorf("sqlite: create order item: %w", err)
	}
	item.ID, err = res.LastInsertId()
	return err
}

// GetOrder loads the full aggregate: order row, its items and its invoice
// if one exists.
func (q *Queries) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const stmt = `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM   orders
		WHERE  id = ?`

	o, err := scanOrder(q.q.QueryRowContext(ctx, stmt, id))
	if err != nil {
		return nil, err
	}
	if o.Items, err = q.listOrderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.Invoice, err = q.getInvoiceByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns every order, newest first, with items attached.
// An empty status lists all; otherwise only matching orders.
func (q *Queries) ListOrders(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	stmt := `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM   orders`
	var args []any
	if status != "" {
		stmt += ` WHERE status = ?`
		args = append(args, string(status))
	}
	stmt += ` ORDER BY created_at DESC, id DESC`

	return q.listOrdersQuery(ctx, stmt, args...)
}

// ListOrdersByUser returns one user's orders, newest first.
func (q *Queries) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	const stmt = `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM   orders
		WHERE  user_id = ?
		ORDER  BY created_at DESC, id DESC`

	return q.listOrdersQuery(ctx, stmt, userID)
}

// UpdateOrder persists the mutable order fields: status, total, updated_at.
func (q *Queries) UpdateOrder(ctx context.Context, o *domain.Order) error {
	const stmt = `
		UPDATE orders
		SET    status = ?, total = ?, updated_at = ?
		WHERE  id = ?`

	res, err := q.q.ExecContext(ctx, stmt,
		string(o.Status), o.Total.String(), nullableTime(o.UpdatedAt), o.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update order %d: %w", o.ID, err)
	}
	return requireRowAffected(res)
}

// UpdateOrderItem persists a line item's quantity, unit price and subtotal.
func (q *Queries) UpdateOrderItem(ctx context.Context, item *domain.OrderItem) error {
	const stmt = `
		UPDATE order_items
		SET    quantity = ?, unit_price = ?, subtotal = ?
		WHERE  id = ? AND order_id = ?`

	res, err := q.q.ExecContext(ctx, stmt,
		item.Quantity, item.UnitPrice.String(), item.Subtotal.String(), item.ID, item.OrderID)
	if err != nil {
		return fmt.Errorf("sqlite: update order item %d: %w", item.ID, err)
	}
	return requireRowAffected(res)
}

// DeleteOrderItem removes one line item from an order.
func (q *Queries) DeleteOrderItem(ctx context.Context, orderID, itemID int64) error {
	res, err := q.q.ExecContext(ctx,
		`DELETE FROM order_items WHERE id = ? AND order_id = ?`, itemID, orderID)
	if err != nil {
		return fmt.Errorf("sqlite: delete order item %d: %w", itemID, err)
	}
	return requireRowAffected(res)
}

// DeleteOrder removes an order; items and invoice follow via FK cascade,
// notifications keep their weak order reference.
func (q *Queries) DeleteOrder(ctx context.Context, id int64) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete order %d: %w", id, err)
	}
	return requireRowAffected(res)
}

func (q *Queries) listOrdersQuery(ctx context.Context, stmt string, args ...any) ([]*domain.Order, error) {
	rows, err := q.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = q.listOrderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (q *Queries) listOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const stmt = `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := q.q.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item      domain.OrderItem
			unitPrice string
			subtotal  string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &unitPrice, &subtotal); err != nil {
			return nil, fmt.Errorf("sqlite: scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("sqlite: decode unit price %q: %w", unitPrice, err)
		}
		if item.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("sqlite: decode subtotal %q: %w", subtotal, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		status    string
		total     string
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(&o.ID, &o.UserID, &status, &total, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan order: %w", err)
	}
	o.Status = domain.Status(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: decode total %q: %w", total, err)
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t, err := parseTime(updatedAt.String)
		if err != nil {
			return nil, err
		}
		o.UpdatedAt = &t
	}
	return &o, nil
}
