package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/service"
	"github.com/restoflow/restoflow/internal/storage"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = fmt.Sprintf("%s", value)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

type testEnv struct {
	server *httptest.Server
	store  *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	notifier := service.NewNotifier(store)
	handler := NewHandler(
		service.NewAuthService(store, []byte("test-secret"), time.Hour),
		service.NewUserService(store),
		service.NewCatalogService(store, &memoryCache{entries: make(map[string]string)}, time.Minute),
		service.NewOrderService(store, notifier),
		service.NewPaymentService(store),
		notifier,
		service.NewTableService(store),
	)

	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return &testEnv{server: server, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func intPtr(v int) *int { return &v }

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) register(t *testing.T, email, role string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Email:    email,
		Password: "s3cret",
		Role:     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[AuthResponse](t, resp).Token
}

func (e *testEnv) seedProduct(t *testing.T, name, price string) int64 {
	t.Helper()
	p := &domain.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
		Category:    "Plats",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateProduct(context.Background(), p))
	return p.ID
}

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Email: "alice@example.com", Password: "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auth := decodeBody[AuthResponse](t, resp)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, []string{domain.RoleClient}, auth.User.Roles)

	// duplicate registration conflicts
	resp = env.do(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Email: "alice@example.com", Password: "s3cret",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/login", "", LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/login", "", LoginRequest{
		Email: "alice@example.com", Password: "s3cret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/orders", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// the catalog stays public
	resp = env.do(t, http.MethodGet, "/api/products-list", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderPaymentFlow(t *testing.T) {
	env := newTestEnv(t)

	clientToken := env.register(t, "client@example.com", "")
	chefToken := env.register(t, "chef@example.com", domain.RoleChef)
	pizzaID := env.seedProduct(t, "Pizza", "12.75")

	// create
	resp := env.do(t, http.MethodPost, "/api/orders", clientToken, CreateOrderRequest{
		Items: []CreateOrderItemDTO{{ProductID: pizzaID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[OrderResponse](t, resp)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "25.50", order.Total)
	require.Len(t, order.Items, 1)

	// pay with a mismatched amount
	resp = env.do(t, http.MethodPost, "/api/payment/process", clientToken, PaymentRequest{
		OrderID: order.ID, Amount: 10.00,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// pay correctly
	resp = env.do(t, http.MethodPost, "/api/payment/process", clientToken, PaymentRequest{
		OrderID: order.ID, Amount: 25.50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	receipt := decodeBody[PaymentResponse](t, resp)
	assert.Equal(t, "paid", receipt.Status)
	assert.Equal(t, "completed", receipt.PaymentStatus)
	assert.NotEmpty(t, receipt.Reference)

	// paying twice is rejected
	resp = env.do(t, http.MethodPost, "/api/payment/process", clientToken, PaymentRequest{
		OrderID: order.ID, Amount: 25.50,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// the invoice is attached to the order now
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decodeBody[OrderResponse](t, resp)
	require.NotNil(t, paid.Invoice)
	assert.Equal(t, "25.50", paid.Invoice.Amount)

	// only staff may change the status
	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID), clientToken,
		UpdateStatusRequest{Status: "preparing"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID), chefToken,
		UpdateStatusRequest{Status: "preparing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[OrderResponse](t, resp)
	assert.Equal(t, "preparing", updated.Status)
	assert.Equal(t, "En préparation", updated.Label)

	// the owner received a status notification
	resp = env.do(t, http.MethodGet, "/api/notifications", clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notifs := decodeBody[[]NotificationResponse](t, resp)
	require.NotEmpty(t, notifs)
	assert.Equal(t, "order_status_changed", notifs[0].Type)
}

func TestOrderItemEndpoints(t *testing.T) {
	env := newTestEnv(t)

	clientToken := env.register(t, "client@example.com", "")
	pizzaID := env.seedProduct(t, "Pizza", "12.50")
	saladeID := env.seedProduct(t, "Salade", "6.00")

	resp := env.do(t, http.MethodPost, "/api/orders", clientToken, CreateOrderRequest{
		Items: []CreateOrderItemDTO{
			{ProductID: pizzaID, Quantity: 1},
			{ProductID: saladeID, Quantity: 2},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[OrderResponse](t, resp)
	require.Len(t, order.Items, 2)

	// bump the pizza to 2
	resp = env.do(t, http.MethodPut,
		fmt.Sprintf("/api/orders/%d/items/%d", order.ID, order.Items[0].ID),
		clientToken, UpdateItemRequest{Quantity: intPtr(2)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[OrderResponse](t, resp)
	assert.Equal(t, "37.00", updated.Total)

	// remove the salade
	resp = env.do(t, http.MethodDelete,
		fmt.Sprintf("/api/orders/%d/items/%d", order.ID, order.Items[1].ID),
		clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated = decodeBody[OrderResponse](t, resp)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "25.00", updated.Total)

	// removing the last item cancels the order
	resp = env.do(t, http.MethodPut,
		fmt.Sprintf("/api/orders/%d/items/%d", order.ID, updated.Items[0].ID),
		clientToken, UpdateItemRequest{Quantity: intPtr(0)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cancelled := decodeBody[OrderResponse](t, resp)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "0.00", cancelled.Total)
	assert.Empty(t, cancelled.Items)
}

func TestItemUpdateRequiresQuantity(t *testing.T) {
	env := newTestEnv(t)

	clientToken := env.register(t, "client@example.com", "")
	pizzaID := env.seedProduct(t, "Pizza", "12.50")

	resp := env.do(t, http.MethodPost, "/api/orders", clientToken, CreateOrderRequest{
		Items: []CreateOrderItemDTO{{ProductID: pizzaID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[OrderResponse](t, resp)
	require.Len(t, order.Items, 1)

	// an empty body must not be read as quantity 0
	resp = env.do(t, http.MethodPut,
		fmt.Sprintf("/api/orders/%d/items/%d", order.ID, order.Items[0].ID),
		clientToken, struct{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// the order is untouched: still pending, item still present
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[OrderResponse](t, resp)
	assert.Equal(t, "pending", got.Status)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, "12.50", got.Total)
}

func TestAdminUserEndpoints(t *testing.T) {
	env := newTestEnv(t)

	adminToken := env.register(t, "admin@example.com", domain.RoleAdmin)
	clientToken := env.register(t, "client@example.com", "")

	resp := env.do(t, http.MethodGet, "/api/admin/users", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decodeBody[[]UserResponse](t, resp)
	assert.Len(t, users, 2)

	// self vote
	resp = env.do(t, http.MethodPut, "/api/users/client@example.com/vote", clientToken, VoteRequest{Vote: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	voted := decodeBody[UserResponse](t, resp)
	require.NotNil(t, voted.Vote)
	assert.Equal(t, 5, *voted.Vote)

	resp = env.do(t, http.MethodDelete, "/api/admin/users/client@example.com", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/admin/users/ghost@example.com", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestTableEndpoints(t *testing.T) {
	env := newTestEnv(t)

	serveurToken := env.register(t, "serveur@example.com", domain.RoleServeur)
	table := &domain.Table{Name: "T1", Capacity: 2, IsAvailable: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, env.store.CreateTable(context.Background(), table))
	guest, err := env.store.GetUserByEmail(context.Background(), "serveur@example.com")
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/tables/sessions", serveurToken, StartSessionRequest{
		TableID: table.ID, GuestID: guest.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decodeBody[SessionResponse](t, resp)
	assert.Empty(t, session.EndTime)

	resp = env.do(t, http.MethodGet, "/api/tables", serveurToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tables := decodeBody[[]TableResponse](t, resp)
	require.Len(t, tables, 1)
	assert.False(t, tables[0].IsAvailable)

	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/tables/sessions/%d/close", session.ID), serveurToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decodeBody[SessionResponse](t, resp)
	assert.NotEmpty(t, closed.EndTime)
}
