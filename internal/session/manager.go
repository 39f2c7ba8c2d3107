package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/payment"
	"github.com/kiwari-pos/register/internal/pricing"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned for unknown sessions or sessions of another outlet.
var ErrNotFound = errors.New("session not found")

// Config holds per-session behaviour switches.
type Config struct {
	TaxRate         decimal.Decimal
	StrictAmounts   bool
	QuickAddAmounts []decimal.Decimal
	// ClearOnComplete empties the order and closes the payment dialog once a
	// payment completes. Off by default: the session keeps the paid order on
	// screen until the cashier clears it.
	ClearOnComplete bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		TaxRate:         pricing.DefaultTaxRate,
		QuickAddAmounts: payment.DefaultQuickAddAmounts,
	}
}

// CompletionHook reacts to completed payments (persist, print, publish).
type CompletionHook interface {
	PaymentCompleted(ctx context.Context, r Receipt)
}

// Notifier is told about every session change.
type Notifier interface {
	SessionUpdated(outletID uuid.UUID, snap Snapshot)
	SessionClosed(outletID, sessionID uuid.UUID)
}

// Observer receives lifecycle counts.
type Observer interface {
	SessionOpened(outletID uuid.UUID)
	SessionClosed(outletID uuid.UUID)
	ItemsAdded(outletID uuid.UUID, n int)
}

// Option configures a Manager.
type Option func(*Manager)

func WithHooks(hooks ...CompletionHook) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, hooks...) }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the live sessions of the register.
type Manager struct {
	cfg       Config
	modifiers catalog.ModifierProvider
	logger    zerolog.Logger

	hooks    []CompletionHook
	notifier Notifier
	observer Observer
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager. Sessions look up product modifiers through
// modifiers.
func NewManager(cfg Config, modifiers catalog.ModifierProvider, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		modifiers: modifiers,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new empty session for the outlet.
func (m *Manager) Create(outletID uuid.UUID) Snapshot {
	s := newSession(outletID, m.cfg, m.modifiers, m.logger, m.now)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info().Str("session_id", s.id.String()).Str("outlet_id", outletID.String()).Msg("session opened")
	if m.observer != nil {
		m.observer.SessionOpened(outletID)
	}

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()
	m.notify(snap)
	return snap
}

// Get returns a snapshot of the session.
func (m *Manager) Get(outletID, id uuid.UUID) (Snapshot, error) {
	s, err := m.lookup(outletID, id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// List returns snapshots of the outlet's sessions, oldest first.
func (m *Manager) List(outletID uuid.UUID) []Snapshot {
	m.mu.RLock()
	var sessions []*Session
	for _, s := range m.sessions {
		if s.outletID == outletID {
			sessions = append(sessions, s)
		}
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		out = append(out, s.snapshot())
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Delete closes the session, discarding all its state.
func (m *Manager) Delete(outletID, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.outletID != outletID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	m.logger.Info().Str("session_id", id.String()).Msg("session closed")
	if m.observer != nil {
		m.observer.SessionClosed(outletID)
	}
	if m.notifier != nil {
		m.notifier.SessionClosed(outletID, id)
	}
	return nil
}

// Update runs fn with exclusive access to the session and returns the
// resulting snapshot. The snapshot is returned even when fn fails.
func (m *Manager) Update(ctx context.Context, outletID, id uuid.UUID, fn func(*Session) error) (Snapshot, error) {
	s, err := m.lookup(outletID, id)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	before := s.order.Len()
	fnErr := fn(s)
	added := s.order.Len() - before
	receipt := s.pending
	s.pending = nil
	snap := s.snapshot()
	s.mu.Unlock()

	if added > 0 && m.observer != nil {
		m.observer.ItemsAdded(outletID, added)
	}
	if receipt != nil {
		m.dispatch(ctx, *receipt)
	}
	if fnErr == nil {
		m.notify(snap)
	}
	return snap, fnErr
}

// CompletePayment finalizes the session's payment and hands the receipt to
// every completion hook. With ClearOnComplete the order is emptied and the
// payment dialog closed afterwards.
func (m *Manager) CompletePayment(ctx context.Context, outletID, id uuid.UUID) (Receipt, Snapshot, error) {
	var receipt Receipt
	snap, err := m.Update(ctx, outletID, id, func(s *Session) error {
		if err := s.payment.Complete(); err != nil {
			return err
		}
		receipt = *s.lastReceipt
		if m.cfg.ClearOnComplete {
			s.order.ClearOrder()
			s.payment.Reset()
		}
		return nil
	})
	if err != nil {
		return Receipt{}, snap, err
	}
	return receipt, snap, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(outletID, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.outletID != outletID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) dispatch(ctx context.Context, r Receipt) {
	m.logger.Info().
		Str("session_id", r.SessionID.String()).
		Str("method", r.Method).
		Str("total", r.Order.Total.String()).
		Msg("payment completed")
	for _, h := range m.hooks {
		h.PaymentCompleted(ctx, r)
	}
}

func (m *Manager) notify(snap Snapshot) {
	if m.notifier != nil {
		m.notifier.SessionUpdated(snap.OutletID, snap)
	}
}
