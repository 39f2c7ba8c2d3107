// Package catalog describes the products and modifiers a POS session sells.
// The catalog is read-only input for the register: it is either backed by
// PostgreSQL or by an in-memory sample menu.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a product is missing or inactive.
var ErrProductNotFound = errors.New("product not found")

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"category_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
}

// Modifier is a flat-priced add-on for a product.
type Modifier struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Provider supplies products keyed by category for one outlet.
type Provider interface {
	Categories(ctx context.Context, outletID uuid.UUID) ([]Category, error)
	ProductsByCategory(ctx context.Context, outletID uuid.UUID, categoryID int64) ([]Product, error)
	Products(ctx context.Context, outletID uuid.UUID) ([]Product, error)
	Product(ctx context.Context, outletID uuid.UUID, productID int64) (Product, error)
}

// ModifierProvider supplies the modifiers offered for a product.
type ModifierProvider interface {
	ForProduct(ctx context.Context, productID int64) ([]Modifier, error)
}

// Catalog is the full read surface used by the HTTP layer.
type Catalog interface {
	Provider
	ModifierProvider
}
