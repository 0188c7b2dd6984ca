package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/restoflow/restoflow/internal/domain"
)

// CreateInvoice inserts the one invoice an order may have. The UNIQUE
// constraint on order_id backs the exactly-once rule; violating it maps
// to ErrAlreadyExists.
func (q *Queries) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	const stmt = `
		INSERT INTO invoices (order_id, number, amount, created_at)
		VALUES (?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		inv.OrderID, inv.Number, inv.Amount.String(), formatTime(inv.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: invoice for order %d: %w", inv.OrderID, ErrAlreadyExists)
		}
		return fmt.Errorf("sqlite: create invoice: %w", err)
	}
	inv.ID, err = res.LastInsertId()
	return err
}

// getInvoiceByOrder returns the order's invoice, or nil when none exists.
func (q *Queries) getInvoiceByOrder(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	const stmt = `
		SELECT id, order_id, number, amount, created_at
		FROM   invoices
		WHERE  order_id = ?`

	var (
		inv       domain.Invoice
		amount    string
		createdAt string
	)
	err := q.q.QueryRowContext(ctx, stmt, orderID).
		Scan(&inv.ID, &inv.OrderID, &inv.Number, &amount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get invoice for order %d: %w", orderID, err)
	}
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("sqlite: decode invoice amount %q: %w", amount, err)
	}
	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreatePayment records one processed payment.
func (q *Queries) CreatePayment(ctx context.Context, p *domain.Payment) error {
	const stmt = `
		INSERT INTO payments (order_id, user_id, reference, method, is_partial, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		p.OrderID, p.UserID, p.Reference, nullableString(p.Method),
		p.IsPartial, p.Amount.String(), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create payment: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// ListPaymentsByOrder returns an order's payments, oldest first.
func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	const stmt = `
		SELECT id, order_id, user_id, reference, COALESCE(method,''), is_partial, amount, created_at
		FROM   payments
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := q.q.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list payments for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var (
			p         domain.Payment
			amount    string
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Reference, &p.Method, &p.IsPartial, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan payment: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("sqlite: decode payment amount %q: %w", amount, err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
