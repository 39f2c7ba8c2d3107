package customization

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/order"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pizza  = catalog.Product{ID: 7, Name: "Pizza", Price: decimal.NewFromInt(50000)}
	cheese = catalog.Modifier{ID: 1, Name: "Extra cheese", Price: decimal.NewFromInt(5000)}
	olives = catalog.Modifier{ID: 2, Name: "Olives", Price: decimal.NewFromInt(8000)}
	chili  = catalog.Modifier{ID: 3, Name: "Chili", Price: decimal.Zero}
)

type stubModifiers struct {
	mods []catalog.Modifier
	err  error
}

func (s stubModifiers) ForProduct(_ context.Context, _ int64) ([]catalog.Modifier, error) {
	return s.mods, s.err
}

func newResolver(t *testing.T) (*Resolver, *order.Accumulator) {
	t.Helper()
	acc := order.New()
	r := New(acc, stubModifiers{mods: []catalog.Modifier{cheese, olives, chili}}, zerolog.Nop())
	return r, acc
}

func TestComputePrices(t *testing.T) {
	unit := ComputeUnitPrice(decimal.NewFromInt(50000), []catalog.Modifier{cheese, olives})
	assert.True(t, unit.Equal(decimal.NewFromInt(63000)))
	assert.True(t, ComputeLineTotal(unit, 2).Equal(decimal.NewFromInt(126000)))
	assert.True(t, ComputeLineTotal(unit, 0).Equal(unit))
}

func TestConfirm_LinePricing(t *testing.T) {
	r, acc := newResolver(t)
	r.Open(context.Background(), pizza)

	require.NoError(t, r.ToggleModifierByID(cheese.ID))
	require.NoError(t, r.ToggleModifierByID(olives.ID))
	r.Increment()

	state := r.State()
	assert.True(t, state.UnitPrice.Equal(decimal.NewFromInt(63000)))
	assert.True(t, state.LineTotal.Equal(decimal.NewFromInt(126000)))

	item, err := r.Confirm()
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(63000)))
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(126000)))
	assert.Equal(t, 1, acc.Len())
}

func TestConfirm_ResetsSelection(t *testing.T) {
	r, _ := newResolver(t)
	r.Open(context.Background(), pizza)
	r.ToggleModifier(cheese)
	r.SetQuantity(3)
	r.SetNotes("well done")

	_, err := r.Confirm()
	require.NoError(t, err)

	state := r.State()
	assert.Nil(t, state.Product)
	assert.Empty(t, state.Selected)
	assert.Equal(t, 1, state.Quantity)
	assert.Empty(t, state.Notes)

	_, err = r.Confirm()
	assert.ErrorIs(t, err, ErrNoProduct)
}

func TestToggleModifier_SymmetricDifference(t *testing.T) {
	r, _ := newResolver(t)
	r.Open(context.Background(), pizza)

	r.ToggleModifier(olives)
	r.ToggleModifier(cheese)
	r.ToggleModifier(chili)
	assert.Equal(t, []catalog.Modifier{olives, cheese, chili}, r.Selected())

	r.ToggleModifier(cheese)
	assert.Equal(t, []catalog.Modifier{olives, chili}, r.Selected())

	r.ToggleModifier(cheese)
	assert.Equal(t, []catalog.Modifier{olives, chili, cheese}, r.Selected(), "re-added modifiers go to the end")
}

func TestToggleModifierByID_Unknown(t *testing.T) {
	r, _ := newResolver(t)
	assert.ErrorIs(t, r.ToggleModifierByID(cheese.ID), ErrNoProduct)

	r.Open(context.Background(), pizza)
	assert.ErrorIs(t, r.ToggleModifierByID(99), ErrUnknownModifier)
}

func TestDecrement_FloorsAtOne(t *testing.T) {
	r, _ := newResolver(t)
	r.Open(context.Background(), pizza)

	r.Decrement()
	assert.Equal(t, 1, r.Quantity())

	r.Increment()
	r.Increment()
	r.Decrement()
	r.Decrement()
	r.Decrement()
	assert.Equal(t, 1, r.Quantity())

	r.SetQuantity(-4)
	assert.Equal(t, 1, r.Quantity())
}

func TestAdjustQuantity(t *testing.T) {
	r, _ := newResolver(t)
	r.Open(context.Background(), pizza)

	r.AdjustQuantity(4)
	assert.Equal(t, 5, r.Quantity())

	r.AdjustQuantity(-2)
	assert.Equal(t, 3, r.Quantity())

	r.AdjustQuantity(math.MinInt)
	assert.Equal(t, 1, r.Quantity(), "floors at one")

	r.AdjustQuantity(math.MaxInt)
	assert.Equal(t, math.MaxInt, r.Quantity(), "saturates instead of wrapping")

	r.Increment()
	assert.Equal(t, math.MaxInt, r.Quantity())
}

func TestDiscard_DoesNotLeakIntoNextConfirm(t *testing.T) {
	r, acc := newResolver(t)
	ctx := context.Background()

	r.Open(ctx, pizza)
	r.ToggleModifier(cheese)
	r.ToggleModifier(olives)
	r.SetQuantity(5)
	r.SetNotes("discard me")
	r.Discard()
	assert.Equal(t, 0, acc.Len(), "discard never adds")

	r.Open(ctx, pizza)
	r.ToggleModifier(chili)
	item, err := r.Confirm()
	require.NoError(t, err)

	assert.Equal(t, []catalog.Modifier{chili}, item.Modifiers)
	assert.Equal(t, 1, item.Quantity)
	assert.Empty(t, item.Notes)
	assert.True(t, item.TotalPrice.Equal(pizza.Price))
}

func TestOpen_ModifierLookupFailureOffersNone(t *testing.T) {
	acc := order.New()
	r := New(acc, stubModifiers{err: errors.New("catalog down")}, zerolog.Nop())

	r.Open(context.Background(), pizza)
	state := r.State()
	require.NotNil(t, state.Product)
	assert.Empty(t, state.Available)

	item, err := r.Confirm()
	require.NoError(t, err)
	assert.True(t, item.TotalPrice.Equal(pizza.Price))
}

func TestOpen_ReplacesPreviousSelection(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	r.Open(ctx, pizza)
	r.ToggleModifier(cheese)
	r.Open(ctx, catalog.Product{ID: 8, Name: "Calzone", Price: decimal.NewFromInt(60000)})

	assert.Empty(t, r.Selected())
	assert.Equal(t, "Calzone", r.State().Product.Name)
}

func TestPreview(t *testing.T) {
	r, acc := newResolver(t)

	unit, line := r.Preview()
	assert.True(t, unit.IsZero())
	assert.True(t, line.IsZero())

	r.Open(context.Background(), pizza)
	r.ToggleModifier(olives)
	r.SetQuantity(3)

	unit, line = r.Preview()
	assert.True(t, decimal.NewFromInt(58000).Equal(unit), "unit: %s", unit)
	assert.True(t, decimal.NewFromInt(174000).Equal(line), "line: %s", line)
	assert.Zero(t, acc.Len(), "preview must not add to the order")
}
