package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restoflow/restoflow/internal/domain"
)

// CreateNotification inserts one notification row.
func (q *Queries) CreateNotification(ctx context.Context, n *domain.Notification) error {
	const stmt = `
		INSERT INTO notifications (user_id, type, title, message, order_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		n.UserID, n.Type, n.Title, n.Message, n.OrderID, n.IsRead, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	return err
}

// GetNotification loads one notification by id.
func (q *Queries) GetNotification(ctx context.Context, id int64) (*domain.Notification, error) {
	const stmt = `
		SELECT id, user_id, type, title, message, order_id, is_read, created_at
		FROM   notifications
		WHERE  id = ?`

	return scanNotification(q.q.QueryRowContext(ctx, stmt, id))
}

// ListNotificationsByUser returns one user's notifications, newest first,
// capped at limit.
func (q *Queries) ListNotificationsByUser(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error) {
	const stmt = `
		SELECT id, user_id, type, title, message, order_id, is_read, created_at
		FROM   notifications
		WHERE  user_id = ?
		ORDER  BY created_at DESC, id DESC
		LIMIT  ?`

	rows, err := q.q.QueryContext(ctx, stmt, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag.
func (q *Queries) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := q.q.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: mark notification %d read: %w", id, err)
	}
	return requireRowAffected(res)
}

// DeleteNotification removes one notification.
func (q *Queries) DeleteNotification(ctx context.Context, id int64) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete notification %d: %w", id, err)
	}
	return requireRowAffected(res)
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n         domain.Notification
		createdAt string
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.OrderID, &n.IsRead, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan notification: %w", err)
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &n, nil
}
