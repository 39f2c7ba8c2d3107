// Package order accumulates the line items of the order currently being
// built on a POS session and keeps its totals up to date.
package order

import (
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/pricing"
	"github.com/shopspring/decimal"
)

// LineItem is a product captured in the order at add time.
// ProductName and Modifiers are snapshots; later catalog changes do not apply.
type LineItem struct {
	ProductID   int64              `json:"product_id"`
	ProductName string             `json:"product_name"`
	Quantity    int                `json:"quantity"`
	Modifiers   []catalog.Modifier `json:"modifiers"`
	Notes       string             `json:"notes,omitempty"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	TotalPrice  decimal.Decimal    `json:"total_price"`
}

// Table is the dine-in table an order is bound to.
type Table struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Summary is a read-only snapshot of an order.
type Summary struct {
	Table    *Table          `json:"table"`
	Items    []LineItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Context is the order handle shared by the customization dialog and the
// payment screen of one session.
type Context interface {
	AddItem(product catalog.Product, quantity int, modifiers []catalog.Modifier, notes string) LineItem
	SetTable(tableID int, label string) bool
	Items() []LineItem
	Subtotal() decimal.Decimal
	Tax() decimal.Decimal
	Total() decimal.Decimal
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithTaxRate overrides pricing.DefaultTaxRate.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(a *Accumulator) { a.taxRate = rate }
}

// Accumulator holds the line items and derived totals of one order.
// It is not safe for concurrent use.
type Accumulator struct {
	taxRate decimal.Decimal
	table   *Table
	items   []LineItem
	totals  pricing.Summary
}

var _ Context = (*Accumulator)(nil)

// New creates an empty Accumulator.
func New(opts ...Option) *Accumulator {
	a := &Accumulator{taxRate: pricing.DefaultTaxRate}
	for _, opt := range opts {
		opt(a)
	}
	a.recompute()
	return a
}

// AddItem appends a line item and recomputes the totals. It always succeeds;
// a quantity below 1 is recorded as 1.
func (a *Accumulator) AddItem(product catalog.Product, quantity int, modifiers []catalog.Modifier, notes string) LineItem {
	mods := make([]catalog.Modifier, len(modifiers))
	copy(mods, modifiers)

	addOns := make([]decimal.Decimal, len(mods))
	for i, m := range mods {
		addOns[i] = m.Price
	}

	qty := pricing.ClampQuantity(quantity)
	unit := pricing.UnitPrice(product.Price, addOns...)
	item := LineItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    qty,
		Modifiers:   mods,
		Notes:       notes,
		UnitPrice:   unit,
		TotalPrice:  pricing.LineTotal(unit, qty),
	}

	a.items = append(a.items, item)
	a.recompute()
	return item
}

// SetTable binds the order to a table. Once bound, later calls are no-ops
// and return false; existing items are never touched.
func (a *Accumulator) SetTable(tableID int, label string) bool {
	if a.table != nil {
		return false
	}
	a.table = &Table{ID: tableID, Label: label}
	return true
}

// ClearOrder drops every item and zeroes the totals. The table binding stays.
func (a *Accumulator) ClearOrder() {
	a.items = nil
	a.recompute()
}

// Table returns the bound table, if any.
func (a *Accumulator) Table() (Table, bool) {
	if a.table == nil {
		return Table{}, false
	}
	return *a.table, true
}

// Items returns a copy of the line items in insertion order.
func (a *Accumulator) Items() []LineItem {
	out := make([]LineItem, len(a.items))
	for i, it := range a.items {
		it.Modifiers = append([]catalog.Modifier{}, it.Modifiers...)
		out[i] = it
	}
	return out
}

func (a *Accumulator) Subtotal() decimal.Decimal { return a.totals.Subtotal }
func (a *Accumulator) Tax() decimal.Decimal      { return a.totals.Tax }
func (a *Accumulator) Total() decimal.Decimal    { return a.totals.Total }

// Len returns the number of line items.
func (a *Accumulator) Len() int { return len(a.items) }

// Summary returns a snapshot of the order.
func (a *Accumulator) Summary() Summary {
	s := Summary{
		Items:    a.Items(),
		Subtotal: a.totals.Subtotal,
		Tax:      a.totals.Tax,
		Total:    a.totals.Total,
	}
	if a.table != nil {
		t := *a.table
		s.Table = &t
	}
	return s
}

func (a *Accumulator) recompute() {
	lineTotals := make([]decimal.Decimal, len(a.items))
	for i, it := range a.items {
		lineTotals[i] = it.TotalPrice
	}
	a.totals = pricing.Totals(lineTotals, a.taxRate)
}
