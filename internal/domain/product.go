package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Read-mostly; the price is captured onto
// order items at attach time, so later price changes never affect
// existing orders.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
	Category    string
	Image       string
	Rating      *float64
	PrepTime    string
	Popular     bool
	Components  []ProductComponent
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ProductComponent is an optional add-on owned by a product.
type ProductComponent struct {
	ID         int64
	ProductID  int64
	Name       string
	Price      decimal.Decimal
	IsOptional bool
	CreatedAt  time.Time
}
