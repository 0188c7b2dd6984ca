package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *storage.Store, email string, roles ...string) *domain.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{domain.RoleClient}
	}
	u := &domain.User{
		Email:        email,
		Name:         "Test",
		PasswordHash: "hash",
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, store *storage.Store, name, price string) *domain.Product {
	t.Helper()
	d, err := decimal.NewFromString(price)
	require.NoError(t, err)
	p := &domain.Product{
		Name:        name,
		Price:       d,
		IsAvailable: true,
		Category:    "Plats",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

func placeOrder(t *testing.T, orders *OrderService, user *domain.User, items ...ItemInput) *domain.Order {
	t.Helper()
	order, err := orders.Create(context.Background(), user, items)
	require.NoError(t, err)
	return order
}
