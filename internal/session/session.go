// Package session hosts POS view sessions. Each session owns one order, one
// customization dialog and one payment dialog, wired to each other through
// explicit interfaces rather than shared global state.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/customization"
	"github.com/kiwari-pos/register/internal/order"
	"github.com/kiwari-pos/register/internal/payment"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Receipt is captured when a payment reaches COMPLETED.
type Receipt struct {
	SessionID      uuid.UUID       `json:"session_id"`
	OutletID       uuid.UUID       `json:"outlet_id"`
	Order          order.Summary   `json:"order"`
	Method         string          `json:"method"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	ChangeDue      decimal.Decimal `json:"change_due"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// Snapshot is a read-only view of a whole session.
type Snapshot struct {
	ID            uuid.UUID           `json:"id"`
	OutletID      uuid.UUID           `json:"outlet_id"`
	CreatedAt     time.Time           `json:"created_at"`
	Order         order.Summary       `json:"order"`
	Customization customization.State `json:"customization"`
	Payment       payment.Snapshot    `json:"payment"`
	LastReceipt   *Receipt            `json:"last_receipt"`
}

// Session is one POS view. All access goes through Manager, which holds mu.
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	outletID  uuid.UUID
	createdAt time.Time

	order      *order.Accumulator
	customizer *customization.Resolver
	payment    *payment.Validator

	lastReceipt *Receipt
	// pending is set by the payment completion callback and drained by the
	// manager after the lock is released.
	pending *Receipt
}

func newSession(outletID uuid.UUID, cfg Config, modifiers catalog.ModifierProvider, logger zerolog.Logger, now func() time.Time) *Session {
	s := &Session{
		id:        uuid.New(),
		outletID:  outletID,
		createdAt: now(),
	}
	s.order = order.New(order.WithTaxRate(cfg.TaxRate))
	s.customizer = customization.New(s.order, modifiers, logger.With().Str("session_id", s.id.String()).Logger())
	s.payment = payment.New(s.order,
		payment.WithStrictAmounts(cfg.StrictAmounts),
		payment.WithQuickAddAmounts(cfg.QuickAddAmounts),
		payment.WithOnComplete(func() {
			r := Receipt{
				SessionID:      s.id,
				OutletID:       s.outletID,
				Order:          s.order.Summary(),
				Method:         s.payment.Method(),
				AmountReceived: s.payment.AmountReceived(),
				ChangeDue:      s.payment.ChangeDue(),
				CompletedAt:    now(),
			}
			s.lastReceipt = &r
			s.pending = &r
		}),
	)
	return s
}

func (s *Session) ID() uuid.UUID       { return s.id }
func (s *Session) OutletID() uuid.UUID { return s.outletID }

// Order returns the order accumulator. Only valid inside Manager.Update.
func (s *Session) Order() *order.Accumulator { return s.order }

// Customizer returns the customization dialog. Only valid inside Manager.Update.
func (s *Session) Customizer() *customization.Resolver { return s.customizer }

// Payment returns the payment dialog. Only valid inside Manager.Update.
func (s *Session) Payment() *payment.Validator { return s.payment }

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:            s.id,
		OutletID:      s.outletID,
		CreatedAt:     s.createdAt,
		Order:         s.order.Summary(),
		Customization: s.customizer.State(),
		Payment:       s.payment.Snapshot(),
	}
	if s.lastReceipt != nil {
		r := *s.lastReceipt
		snap.LastReceipt = &r
	}
	return snap
}
