// Package customization implements the product customization dialog:
// the cashier picks modifiers, quantity and notes for one product and
// confirms it into the order.
package customization

import (
	"context"
	"errors"
	"math"

	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/order"
	"github.com/kiwari-pos/register/internal/pricing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Errors returned by the resolver.
var (
	ErrNoProduct       = errors.New("no product selected")
	ErrUnknownModifier = errors.New("modifier not offered for product")
)

// ItemAdder receives confirmed line items. Satisfied by *order.Accumulator.
type ItemAdder interface {
	AddItem(product catalog.Product, quantity int, modifiers []catalog.Modifier, notes string) order.LineItem
}

// State is a read-only snapshot of the dialog.
type State struct {
	Product   *catalog.Product   `json:"product"`
	Available []catalog.Modifier `json:"available_modifiers"`
	Selected  []catalog.Modifier `json:"selected_modifiers"`
	Quantity  int                `json:"quantity"`
	Notes     string             `json:"notes"`
	UnitPrice decimal.Decimal    `json:"unit_price"`
	LineTotal decimal.Decimal    `json:"line_total"`
}

// Resolver holds the selection state of the customization dialog.
// Nothing reaches the order until Confirm. Not safe for concurrent use.
type Resolver struct {
	orders    ItemAdder
	modifiers catalog.ModifierProvider
	logger    zerolog.Logger

	product   *catalog.Product
	available []catalog.Modifier
	selected  []catalog.Modifier
	quantity  int
	notes     string
}

// New creates a Resolver that confirms into orders and looks up modifiers
// through the given provider.
func New(orders ItemAdder, modifiers catalog.ModifierProvider, logger zerolog.Logger) *Resolver {
	return &Resolver{
		orders:    orders,
		modifiers: modifiers,
		logger:    logger,
		quantity:  1,
	}
}

// Open starts customizing product, replacing any previous selection.
// If the modifier lookup fails the dialog opens with no modifiers.
func (r *Resolver) Open(ctx context.Context, product catalog.Product) {
	r.reset()
	p := product
	r.product = &p

	mods, err := r.modifiers.ForProduct(ctx, product.ID)
	if err != nil {
		r.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("load modifiers failed, offering none")
		mods = nil
	}
	r.available = mods
}

// ToggleModifier adds m to the selection, or removes it if a modifier with
// the same ID is already selected. Selection order is preserved.
func (r *Resolver) ToggleModifier(m catalog.Modifier) {
	for i, sel := range r.selected {
		if sel.ID == m.ID {
			r.selected = append(r.selected[:i], r.selected[i+1:]...)
			return
		}
	}
	r.selected = append(r.selected, m)
}

// ToggleModifierByID toggles one of the modifiers offered for the open product.
func (r *Resolver) ToggleModifierByID(id int64) error {
	if r.product == nil {
		return ErrNoProduct
	}
	for _, m := range r.available {
		if m.ID == id {
			r.ToggleModifier(m)
			return nil
		}
	}
	return ErrUnknownModifier
}

func (r *Resolver) Increment() { r.AdjustQuantity(1) }

// Decrement lowers the quantity; at 1 it is a no-op.
func (r *Resolver) Decrement() {
	if r.quantity > 1 {
		r.quantity--
	}
}

// SetQuantity sets the quantity, clamped to at least 1.
func (r *Resolver) SetQuantity(n int) { r.quantity = pricing.ClampQuantity(n) }

// AdjustQuantity moves the quantity by delta in one step. It saturates at
// math.MaxInt and floors at 1.
func (r *Resolver) AdjustQuantity(delta int) {
	if delta > 0 && r.quantity > math.MaxInt-delta {
		r.quantity = math.MaxInt
		return
	}
	r.SetQuantity(r.quantity + delta)
}

func (r *Resolver) SetNotes(notes string) { r.notes = notes }

func (r *Resolver) Quantity() int { return r.quantity }

// Selected returns the selected modifiers in selection order.
func (r *Resolver) Selected() []catalog.Modifier {
	return append([]catalog.Modifier{}, r.selected...)
}

// ComputeUnitPrice returns basePrice plus the selected modifier prices.
func ComputeUnitPrice(basePrice decimal.Decimal, selected []catalog.Modifier) decimal.Decimal {
	addOns := make([]decimal.Decimal, len(selected))
	for i, m := range selected {
		addOns[i] = m.Price
	}
	return pricing.UnitPrice(basePrice, addOns...)
}

// ComputeLineTotal returns unitPrice * quantity with quantity floored at 1.
func ComputeLineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return pricing.LineTotal(unitPrice, quantity)
}

// Preview returns the unit price and line total of the current selection.
// Both are zero while no product is open.
func (r *Resolver) Preview() (unitPrice, lineTotal decimal.Decimal) {
	if r.product == nil {
		return decimal.Zero, decimal.Zero
	}
	unitPrice = ComputeUnitPrice(r.product.Price, r.selected)
	return unitPrice, ComputeLineTotal(unitPrice, r.quantity)
}

// State returns the current dialog state with live prices.
func (r *Resolver) State() State {
	s := State{
		Available: append([]catalog.Modifier{}, r.available...),
		Selected:  r.Selected(),
		Quantity:  r.quantity,
		Notes:     r.notes,
		UnitPrice: decimal.Zero,
		LineTotal: decimal.Zero,
	}
	if r.product != nil {
		p := *r.product
		s.Product = &p
		s.UnitPrice, s.LineTotal = r.Preview()
	}
	return s
}

// Confirm adds the customized product to the order and resets the dialog
// for the next product.
func (r *Resolver) Confirm() (order.LineItem, error) {
	if r.product == nil {
		return order.LineItem{}, ErrNoProduct
	}
	item := r.orders.AddItem(*r.product, r.quantity, r.selected, r.notes)
	r.reset()
	return item, nil
}

// Discard resets the dialog without touching the order.
func (r *Resolver) Discard() { r.reset() }

func (r *Resolver) reset() {
	r.product = nil
	r.available = nil
	r.selected = nil
	r.quantity = 1
	r.notes = ""
}
