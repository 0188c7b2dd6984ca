package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory Cache for tests; failing toggles every call
// into an error to exercise the degrade-to-database path.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	failing bool
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("cache down")
	}
	f.sets++
	f.entries[key] = fmt.Sprintf("%s", value)
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", errors.New("cache down")
	}
	return f.entries[key], nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("cache down")
	}
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("test:%s:%s", operation, key)
}

func TestListProductsPopulatesCache(t *testing.T) {
	store := newTestStore(t)
	fc := newFakeCache()
	catalog := NewCatalogService(store, fc, time.Minute)
	ctx := context.Background()

	seedProduct(t, store, "Pizza", "12.50")
	seedProduct(t, store, "Salade", "6.00")

	views, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, fc.sets)

	// second read served from the cache, no extra write
	views, err = catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, 1, fc.sets)
}

func TestListProductsSurvivesCacheOutage(t *testing.T) {
	store := newTestStore(t)
	fc := newFakeCache()
	fc.failing = true
	catalog := NewCatalogService(store, fc, time.Minute)

	seedProduct(t, store, "Pizza", "12.50")

	views, err := catalog.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestProductViewDefaults(t *testing.T) {
	store := newTestStore(t)
	catalog := NewCatalogService(store, newFakeCache(), time.Minute)
	ctx := context.Background()

	seedProduct(t, store, "Mystère", "9.90")

	views, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, 9.90, v.Price)
	assert.Equal(t, "Plats", v.Category)
	assert.Equal(t, 4.0, v.Rating)
	assert.Equal(t, "15-20 min", v.PrepTime)
	assert.NotEmpty(t, v.Image)
}

func TestInvalidateDropsCachedCatalog(t *testing.T) {
	store := newTestStore(t)
	fc := newFakeCache()
	catalog := NewCatalogService(store, fc, time.Minute)
	ctx := context.Background()

	seedProduct(t, store, "Pizza", "12.50")
	_, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fc.sets)

	catalog.Invalidate(ctx)

	seedProduct(t, store, "Salade", "6.00")
	views, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, 2, fc.sets)
}
