package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/storage"
)

func paymentFixture(t *testing.T) (*PaymentService, *OrderService, *storage.Store, *domain.User, *domain.Order) {
	t.Helper()
	store := newTestStore(t)
	orders := NewOrderService(store, NewNotifier(store))
	payments := NewPaymentService(store)

	client := seedUser(t, store, "client@example.com")
	pizza := seedProduct(t, store, "Pizza", "10.00")
	salade := seedProduct(t, store, "Salade", "5.50")
	order := placeOrder(t, orders, client,
		ItemInput{ProductID: pizza.ID, Quantity: 2},
		ItemInput{ProductID: salade.ID, Quantity: 1},
	)
	require.Equal(t, "25.50", order.Total.StringFixed(2))
	return payments, orders, store, client, order
}

func TestProcessPayment(t *testing.T) {
	payments, _, store, client, order := paymentFixture(t)
	ctx := context.Background()

	receipt, err := payments.Process(ctx, client, order.ID, decimal.RequireFromString("25.50"), "card")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, receipt.Status)
	assert.Equal(t, "25.50", receipt.Amount.StringFixed(2))
	assert.Equal(t, "completed", receipt.PaymentStatus)
	assert.NotEmpty(t, receipt.Reference)

	got, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
	require.NotNil(t, got.Invoice)
	assert.Equal(t, "25.50", got.Invoice.Amount.StringFixed(2))

	recorded, err := store.ListPaymentsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, receipt.Reference, recorded[0].Reference)
}

func TestProcessPaymentTwiceFails(t *testing.T) {
	payments, _, _, client, order := paymentFixture(t)
	ctx := context.Background()
	amount := decimal.RequireFromString("25.50")

	_, err := payments.Process(ctx, client, order.ID, amount, "card")
	require.NoError(t, err)

	_, err = payments.Process(ctx, client, order.ID, amount, "card")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestProcessPaymentTolerance(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		wantOK bool
	}{
		{"exact", "25.50", true},
		{"one cent under", "25.49", true},
		{"one cent over", "25.51", true},
		{"two cents under", "25.48", false},
		{"way off", "10.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments, _, _, client, order := paymentFixture(t)

			_, err := payments.Process(context.Background(), client, order.ID,
				decimal.RequireFromString(tt.amount), "card")
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			var mismatch *AmountMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, "25.50", mismatch.Expected.StringFixed(2))
			assert.Equal(t, tt.amount, mismatch.Got.StringFixed(2))
		})
	}
}

func TestProcessPaymentMethodOptional(t *testing.T) {
	payments, _, store, client, order := paymentFixture(t)
	ctx := context.Background()

	_, err := payments.Process(ctx, client, order.ID, decimal.RequireFromString("25.50"), "")
	require.NoError(t, err)

	// an omitted method stays empty rather than being invented
	recorded, err := store.ListPaymentsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Empty(t, recorded[0].Method)
}

func TestProcessPaymentOwnershipCheck(t *testing.T) {
	payments, _, store, _, order := paymentFixture(t)
	ctx := context.Background()
	amount := decimal.RequireFromString("25.50")

	stranger := seedUser(t, store, "stranger@example.com")
	_, err := payments.Process(ctx, stranger, order.ID, amount, "card")
	assert.ErrorIs(t, err, ErrForbidden)

	serveur := seedUser(t, store, "serveur@example.com", domain.RoleServeur)
	_, err = payments.Process(ctx, serveur, order.ID, amount, "card")
	assert.NoError(t, err)
}

func TestInvoiceSurvivesOnlyOnePayment(t *testing.T) {
	payments, orders, store, client, order := paymentFixture(t)
	ctx := context.Background()

	_, err := payments.Process(ctx, client, order.ID, decimal.RequireFromString("25.50"), "card")
	require.NoError(t, err)

	first, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Invoice)

	// a failed second attempt must not touch the invoice
	_, err = payments.Process(ctx, client, order.ID, decimal.RequireFromString("25.50"), "card")
	require.Error(t, err)

	again, err := orders.Get(ctx, client, order.ID)
	require.NoError(t, err)
	require.NotNil(t, again.Invoice)
	assert.Equal(t, first.Invoice.Number, again.Invoice.Number)
}

func TestPaymentStatus(t *testing.T) {
	payments, _, _, client, order := paymentFixture(t)
	ctx := context.Background()

	status, err := payments.Status(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, status)

	_, err = payments.Process(ctx, client, order.ID, decimal.RequireFromString("25.50"), "card")
	require.NoError(t, err)

	status, err = payments.Status(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, status)

	_, err = payments.Status(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
