package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

func seedTable(t *testing.T, store *storage.Store, name string) *domain.Table {
	t.Helper()
	table := &domain.Table{Name: name, Capacity: 4, IsAvailable: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateTable(context.Background(), table))
	return table
}

func TestTableSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	tables := NewTableService(store)
	ctx := context.Background()

	serveur := seedUser(t, store, "serveur@example.com", domain.RoleServeur)
	guest := seedUser(t, store, "guest@example.com")
	table := seedTable(t, store, "T1")

	session, err := tables.StartSession(ctx, serveur, table.ID, guest.ID)
	require.NoError(t, err)
	require.NotZero(t, session.ID)

	got, err := store.GetTable(ctx, table.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	// an occupied table refuses a second seating
	_, err = tables.StartSession(ctx, serveur, table.ID, guest.ID)
	assert.ErrorIs(t, err, ErrTableOccupied)

	closed, err := tables.CloseSession(ctx, serveur, session.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)

	got, err = store.GetTable(ctx, table.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	_, err = tables.CloseSession(ctx, serveur, session.ID)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestTableSessionsStaffOnly(t *testing.T) {
	store := newTestStore(t)
	tables := NewTableService(store)
	ctx := context.Background()

	client := seedUser(t, store, "client@example.com")
	table := seedTable(t, store, "T2")

	_, err := tables.StartSession(ctx, client, table.ID, client.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = tables.CloseSession(ctx, client, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}
