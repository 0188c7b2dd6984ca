package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/restoflow/restoflow/internal/domain"
	"github.com/restoflow/restoflow/internal/pkg/cache"
	"github.com/restoflow/restoflow/internal/storage"
)

// Presentation defaults applied when a product row leaves a field empty.
const (
	defaultCategory = "Autre"
	defaultImage    = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400"
	defaultRating   = 4.0
	defaultPrepTime = "15-20 min"
)

// ProductView is the catalog representation served to clients.
type ProductView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Rating      float64  `json:"rating"`
	PrepTime    string   `json:"prepTime"`
	IsPopular   bool     `json:"isPopular"`
	IsAvailable bool     `json:"isAvailable"`
	Components  []string `json:"components,omitempty"`
}

// CatalogService serves the product list through a Redis read cache.
// Cache failures degrade to database reads.
type CatalogService struct {
	store *storage.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewCatalogService(store *storage.Store, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{store: store, cache: c, ttl: ttl}
}

// ListProducts returns the full catalog, cached under a single key.
func (s *CatalogService) ListProducts(ctx context.Context) ([]ProductView, error) {
	key := s.cache.GenerateKey("products", "all")
	if raw, err := s.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	} else if raw != "" {
		var views []ProductView
		if err := json.Unmarshal([]byte(raw), &views); err == nil {
			return views, nil
		}
		slog.WarnContext(ctx, "cache entry corrupt, falling back to db", "key", key)
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}

	if payload, err := json.Marshal(views); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return views, nil
}

// ListByCategory bypasses the cache; category filters are rare enough
// to serve from the database directly.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]ProductView, error) {
	products, err := s.store.ListProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return toViews(products), nil
}

// ListAvailable returns only products currently orderable.
func (s *CatalogService) ListAvailable(ctx context.Context) ([]ProductView, error) {
	products, err := s.store.ListAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}
	return toViews(products), nil
}

// ListPopular returns the highlighted products.
func (s *CatalogService) ListPopular(ctx context.Context) ([]ProductView, error) {
	products, err := s.store.ListPopularProducts(ctx)
	if err != nil {
		return nil, err
	}
	return toViews(products), nil
}

// Invalidate drops the cached catalog, forcing the next read to hit the
// database.
func (s *CatalogService) Invalidate(ctx context.Context) {
	key := s.cache.GenerateKey("products", "all")
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}

func toViews(products []*domain.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}
	return views
}

func toView(p *domain.Product) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		Image:       p.Image,
		Rating:      defaultRating,
		PrepTime:    p.PrepTime,
		IsPopular:   p.Popular,
		IsAvailable: p.IsAvailable,
	}
	if v.Category == "" {
		v.Category = defaultCategory
	}
	if v.Image == "" {
		v.Image = defaultImage
	}
	if p.Rating != nil {
		v.Rating = *p.Rating
	}
	if v.PrepTime == "" {
		v.PrepTime = defaultPrepTime
	}
	for _, c := range p.Components {
		v.Components = append(v.Components, c.Name)
	}
	return v
}
