package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Static is an in-memory catalog shared by every outlet.
// Used when no database is configured and in tests.
type Static struct {
	categories []Category
	products   []Product
	modifiers  map[int64][]Modifier
	// fallback is offered for products without their own modifier list.
	fallback []Modifier
}

// NewStatic builds a Static catalog. modifiers maps product ID to its list;
// fallback is returned for any product not present in that map.
func NewStatic(categories []Category, products []Product, modifiers map[int64][]Modifier, fallback []Modifier) *Static {
	if modifiers == nil {
		modifiers = make(map[int64][]Modifier)
	}
	return &Static{
		categories: categories,
		products:   products,
		modifiers:  modifiers,
		fallback:   fallback,
	}
}

// SampleMenu returns the demo menu the register falls back to without a database.
func SampleMenu() *Static {
	categories := []Category{
		{ID: 1, Name: "Coffee"},
		{ID: 2, Name: "Tea"},
		{ID: 3, Name: "Food"},
	}
	products := []Product{
		{ID: 1, CategoryID: 1, Name: "Espresso", Price: decimal.NewFromInt(35000)},
		{ID: 2, CategoryID: 1, Name: "Cappuccino", Price: decimal.NewFromInt(45000)},
		{ID: 3, CategoryID: 1, Name: "Iced Latte", Price: decimal.NewFromInt(50000)},
		{ID: 4, CategoryID: 2, Name: "Peach Tea", Price: decimal.NewFromInt(40000)},
		{ID: 5, CategoryID: 2, Name: "Milk Tea", Price: decimal.NewFromInt(42000)},
		{ID: 6, CategoryID: 3, Name: "Croissant", Price: decimal.NewFromInt(30000)},
		{ID: 7, CategoryID: 3, Name: "Chicken Sandwich", Price: decimal.NewFromInt(55000)},
	}
	drinkModifiers := []Modifier{
		{ID: 1, Name: "Extra shot", Price: decimal.NewFromInt(10000)},
		{ID: 2, Name: "Oat milk", Price: decimal.NewFromInt(8000)},
		{ID: 3, Name: "Less sugar", Price: decimal.Zero},
		{ID: 4, Name: "Extra ice", Price: decimal.Zero},
	}
	foodModifiers := []Modifier{
		{ID: 5, Name: "Extra cheese", Price: decimal.NewFromInt(5000)},
		{ID: 6, Name: "Add egg", Price: decimal.NewFromInt(8000)},
	}
	modifiers := map[int64][]Modifier{
		6: foodModifiers,
		7: foodModifiers,
	}
	return NewStatic(categories, products, modifiers, drinkModifiers)
}

func (s *Static) Categories(_ context.Context, _ uuid.UUID) ([]Category, error) {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Static) ProductsByCategory(_ context.Context, _ uuid.UUID, categoryID int64) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Static) Products(_ context.Context, _ uuid.UUID) ([]Product, error) {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *Static) Product(_ context.Context, _ uuid.UUID, productID int64) (Product, error) {
	for _, p := range s.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

func (s *Static) ForProduct(_ context.Context, productID int64) ([]Modifier, error) {
	mods, ok := s.modifiers[productID]
	if !ok {
		mods = s.fallback
	}
	out := make([]Modifier, len(mods))
	copy(out, mods)
	return out, nil
}
