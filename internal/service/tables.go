package service

import (
	"context"
	"errors"
	"time"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

var (
	ErrTableOccupied = errors.New("table is not available")
	ErrSessionClosed = errors.New("session already closed")
)

// TableService manages the floor plan and seating sessions. Session
// operations are staff only.
type TableService struct {
	store *storage.Store
}

func NewTableService(store *storage.Store) *TableService {
	return &TableService{store: store}
}

// List returns the floor plan with current availability.
func (s *TableService) List(ctx context.Context) ([]*domain.Table, error) {
	return s.store.ListTables(ctx)
}

// StartSession seats a guest at a table. The table is marked occupied
// in the same transaction that opens the session.
func (s *TableService) StartSession(ctx context.Context, actor *domain.User, tableID, guestID int64) (*domain.TableSession, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	table, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !table.IsAvailable {
		return nil, ErrTableOccupied
	}

	session := &domain.TableSession{
		TableID:   tableID,
		UserID:    guestID,
		StartTime: time.Now().UTC(),
	}
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.CreateTableSession(ctx, session); err != nil {
			return err
		}
		return q.SetTableAvailability(ctx, tableID, false)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CloseSession stamps the end time and frees the table.
func (s *TableService) CloseSession(ctx context.Context, actor *domain.User, sessionID int64) (*domain.TableSession, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	session, err := s.store.GetTableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.EndTime != nil {
		return nil, ErrSessionClosed
	}

	end := time.Now().UTC()
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.EndTableSession(ctx, sessionID, end); err != nil {
			return err
		}
		return q.SetTableAvailability(ctx, session.TableID, true)
	})
	if err != nil {
		return nil, err
	}
	session.EndTime = &end
	return session, nil
}
