package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kiwari-pos/register/internal/database"
	"github.com/shopspring/decimal"
)

// Querier defines the DB methods needed by Store.
// Satisfied by *database.Queries; narrow interface for testability.
type Querier interface {
	ListCategoriesByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.Category, error)
	ListProductsByCategory(ctx context.Context, arg database.ListProductsByCategoryParams) ([]database.Product, error)
	ListProductsByOutlet(ctx context.Context, outletID uuid.UUID) ([]database.Product, error)
	GetProduct(ctx context.Context, arg database.GetProductParams) (database.Product, error)
	ListModifiersByProduct(ctx context.Context, productID int64) ([]database.ProductModifier, error)
}

// Store is a Catalog backed by PostgreSQL.
type Store struct {
	q Querier
}

// NewStore creates a new Store.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Categories(ctx context.Context, outletID uuid.UUID) ([]Category, error) {
	rows, err := s.q.ListCategoriesByOutlet(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]Category, len(rows))
	for i, c := range rows {
		out[i] = Category{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

func (s *Store) ProductsByCategory(ctx context.Context, outletID uuid.UUID, categoryID int64) ([]Product, error) {
	rows, err := s.q.ListProductsByCategory(ctx, database.ListProductsByCategoryParams{
		OutletID:   outletID,
		CategoryID: categoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProducts(rows), nil
}

func (s *Store) Products(ctx context.Context, outletID uuid.UUID) ([]Product, error) {
	rows, err := s.q.ListProductsByOutlet(ctx, outletID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProducts(rows), nil
}

func (s *Store) Product(ctx context.Context, outletID uuid.UUID, productID int64) (Product, error) {
	row, err := s.q.GetProduct(ctx, database.GetProductParams{ID: productID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return toProduct(row), nil
}

func (s *Store) ForProduct(ctx context.Context, productID int64) ([]Modifier, error) {
	rows, err := s.q.ListModifiersByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list modifiers: %w", err)
	}
	out := make([]Modifier, len(rows))
	for i, m := range rows {
		out[i] = Modifier{ID: m.ID, Name: m.Name, Price: NumericToDecimal(m.Price)}
	}
	return out, nil
}

func toProducts(rows []database.Product) []Product {
	out := make([]Product, len(rows))
	for i, p := range rows {
		out[i] = toProduct(p)
	}
	return out
}

func toProduct(p database.Product) Product {
	prod := Product{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Price:      NumericToDecimal(p.BasePrice),
	}
	if p.ImageUrl.Valid {
		prod.Image = p.ImageUrl.String
	}
	return prod
}

// NumericToDecimal converts a pgtype.Numeric, treating NULL or garbage as zero.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DecimalToNumeric converts d to a pgtype.Numeric with two decimal places.
func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
