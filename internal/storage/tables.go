package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/restoflow/restoflow/internal/domain"
)

// CreateTable inserts a dining table.
func (q *Queries) CreateTable(ctx context.Context, t *domain.Table) error {
	const stmt = `
		INSERT INTO dining_tables (name, capacity, is_available, position_x, position_y, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		t.Name, t.Capacity, t.IsAvailable, t.PositionX, t.PositionY, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create table %q: %w", t.Name, err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

// GetTable loads one dining table.
func (q *Queries) GetTable(ctx context.Context, id int64) (*domain.Table, error) {
	const stmt = `
		SELECT id, name, capacity, is_available, position_x, position_y, created_at
		FROM   dining_tables
		WHERE  id = ?`

	return scanTable(q.q.QueryRowContext(ctx, stmt, id))
}

// ListTables returns every dining table ordered by name.
func (q *Queries) ListTables(ctx context.Context) ([]*domain.Table, error) {
	const stmt = `
		SELECT id, name, capacity, is_available, position_x, position_y, created_at
		FROM   dining_tables
		ORDER  BY name`

	rows, err := q.q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	defer rows.Close()

	var tables []*domain.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// SetTableAvailability flips a table's availability flag.
func (q *Queries) SetTableAvailability(ctx context.Context, id int64, available bool) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE dining_tables SET is_available = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("sqlite: set table %d availability: %w", id, err)
	}
	return requireRowAffected(res)
}

// CreateTableSession opens a seating record for a table and user.
func (q *Queries) CreateTableSession(ctx context.Context, s *domain.TableSession) error {
	const stmt = `
		INSERT INTO table_sessions (table_id, user_id, start_time, end_time)
		VALUES (?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		s.TableID, s.UserID, formatTime(s.StartTime), nullableTime(s.EndTime))
	if err != nil {
		return fmt.Errorf("sqlite: create table session: %w", err)
	}
	s.ID, err = res.LastInsertId()
	return err
}

// GetTableSession loads one seating record.
func (q *Queries) GetTableSession(ctx context.Context, id int64) (*domain.TableSession, error) {
	const stmt = `
		SELECT id, table_id, user_id, start_time, end_time
		FROM   table_sessions
		WHERE  id = ?`

	return scanTableSession(q.q.QueryRowContext(ctx, stmt, id))
}

// EndTableSession stamps the session's end time.
func (q *Queries) EndTableSession(ctx context.Context, id int64, end time.Time) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE table_sessions SET end_time = ? WHERE id = ?`, formatTime(end), id)
	if err != nil {
		return fmt.Errorf("sqlite: end table session %d: %w", id, err)
	}
	return requireRowAffected(res)
}

// ListSessionsByTable returns a table's seatings, newest first.
func (q *Queries) ListSessionsByTable(ctx context.Context, tableID int64) ([]*domain.TableSession, error) {
	const stmt = `
		SELECT id, table_id, user_id, start_time, end_time
		FROM   table_sessions
		WHERE  table_id = ?
		ORDER  BY start_time DESC, id DESC`

	rows, err := q.q.QueryContext(ctx, stmt, tableID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list sessions for table %d: %w", tableID, err)
	}
	defer rows.Close()

	var sessions []*domain.TableSession
	for rows.Next() {
		s, err := scanTableSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanTable(row rowScanner) (*domain.Table, error) {
	var (
		t         domain.Table
		createdAt string
	)
	err := row.Scan(&t.ID, &t.Name, &t.Capacity, &t.IsAvailable, &t.PositionX, &t.PositionY, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan table: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTableSession(row rowScanner) (*domain.TableSession, error) {
	var (
		s         domain.TableSession
		startTime string
		endTime   sql.NullString
	)
	err := row.Scan(&s.ID, &s.TableID, &s.UserID, &startTime, &endTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan table session: %w", err)
	}
	if s.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if endTime.Valid {
		t, err := parseTime(endTime.String)
		if err != nil {
			return nil, err
		}
		s.EndTime = &t
	}
	return &s, nil
}
