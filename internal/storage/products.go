package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/restoflow/restoflow/internal/domain"
)

// CreateProduct inserts a catalog entry and its components.
func (q *Queries) CreateProduct(ctx context.Context, p *domain.Product) error {
	const stmt = `
		INSERT INTO products
			(name, description, price, is_available, category, image, rating, prep_time, popular, created_at, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		p.Name,
		nullableString(p.Description),
		p.Price.String(),
		p.IsAvailable,
		nullableString(p.Category),
		nullableString(p.Image),
		p.Rating,
		nullableString(p.PrepTime),
		p.Popular,
		formatTime(p.CreatedAt),
		nullableTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create product %q: %w", p.Name, err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range p.Components {
		p.Components[i].ProductID = p.ID
		if err := q.CreateProductComponent(ctx, &p.Components[i]); err != nil {
			return err
		}
	}
	return nil
}

// CreateProductComponent inserts one add-on for an existing product.
func (q *Queries) CreateProductComponent(ctx context.Context, c *domain.ProductComponent) error {
	const stmt = `
		INSERT INTO product_components (product_id, name, price, is_optional, created_at)
		VALUES (?, ?, ?, ?, ?)`

	res, err := q.q.ExecContext(ctx, stmt,
		c.ProductID, c.Name, c.Price.String(), c.IsOptional, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create component %q: %w", c.Name, err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// GetProduct loads one product with its components.
func (q *Queries) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const stmt = productSelect + ` WHERE id = ?`

	p, err := scanProduct(q.q.QueryRowContext(ctx, stmt, id))
	if err != nil {
		return nil, err
	}
	if p.Components, err = q.listComponents(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns the whole catalog ordered by name.
func (q *Queries) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return q.listProducts(ctx, productSelect+` ORDER BY name`)
}

// ListProductsByCategory returns the catalog entries of one category.
func (q *Queries) ListProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return q.listProducts(ctx, productSelect+` WHERE category = ? ORDER BY name`, category)
}

// ListAvailableProducts returns only products currently offered.
func (q *Queries) ListAvailableProducts(ctx context.Context) ([]*domain.Product, error) {
	return q.listProducts(ctx, productSelect+` WHERE is_available = 1 ORDER BY name`)
}

// ListPopularProducts returns flagged products, best rated first.
func (q *Queries) ListPopularProducts(ctx context.Context) ([]*domain.Product, error) {
	return q.listProducts(ctx, productSelect+` WHERE popular = 1 ORDER BY rating DESC`)
}

const productSelect = `
		SELECT id, name, COALESCE(description,''), price, is_available,
		       COALESCE(category,''), COALESCE(image,''), rating,
		       COALESCE(prep_time,''), popular, created_at, updated_at
		FROM   products`

func (q *Queries) listProducts(ctx context.Context, stmt string, args ...any) ([]*domain.Product, error) {
	rows, err := q.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (q *Queries) listComponents(ctx context.Context, productID int64) ([]domain.ProductComponent, error) {
	const stmt = `
		SELECT id, product_id, name, price, is_optional, created_at
		FROM   product_components
		WHERE  product_id = ?
		ORDER  BY id`

	rows, err := q.q.QueryContext(ctx, stmt, productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list components: %w", err)
	}
	defer rows.Close()

	var components []domain.ProductComponent
	for rows.Next() {
		var (
			c         domain.ProductComponent
			price     string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Name, &price, &c.IsOptional, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan component: %w", err)
		}
		if c.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: decode component price %q: %w", price, err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p         domain.Product
		price     string
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.IsAvailable,
		&p.Category, &p.Image, &p.Rating, &p.PrepTime, &p.Popular, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan product: %w", err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("sqlite: decode price %q: %w", price, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t, err := parseTime(updatedAt.String)
		if err != nil {
			return nil, err
		}
		p.UpdatedAt = &t
	}
	return &p, nil
}
