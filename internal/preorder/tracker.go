package preorder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/rs/zerolog"
)

// ErrNotWatched is returned for pre-orders the tracker does not know.
var ErrNotWatched = errors.New("pre-order is not being watched")

// Notifier receives status changes of watched pre-orders.
type Notifier interface {
	PreOrderStatus(outletID uuid.UUID, orderID, status string)
}

// Status describes one tracked pre-order.
type Status struct {
	OrderID   string    `json:"order_id"`
	OutletID  uuid.UUID `json:"outlet_id"`
	Status    string    `json:"status"`
	Watching  bool      `json:"watching"`
	UpdatedAt time.Time `json:"updated_at"`
}

// watchKey scopes an order ID to its outlet; two outlets may watch the same
// upstream order independently.
type watchKey struct {
	outletID uuid.UUID
	orderID  string
}

type watch struct {
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// Tracker runs at most one poll per pre-order and outlet.
type Tracker struct {
	checker  StatusChecker
	opts     []Option
	notifier Notifier
	logger   zerolog.Logger

	mu      sync.Mutex
	watches map[watchKey]*watch
}

// NewTracker builds a tracker whose polls use checker. The poller options
// apply to every poll; status changes go to notifier, which may be nil.
func NewTracker(checker StatusChecker, notifier Notifier, logger zerolog.Logger, opts ...Option) *Tracker {
	return &Tracker{
		checker:  checker,
		opts:     opts,
		notifier: notifier,
		logger:   logger,
		watches:  make(map[watchKey]*watch),
	}
}

// Watch starts polling orderID for the outlet. An empty initial status means
// DRAFT. Watching an order that is already being polled returns its current
// status without starting a second poll. Watches are per outlet: another
// outlet watching the same order gets its own poll.
func (t *Tracker) Watch(outletID uuid.UUID, orderID, initial string) Status {
	if initial == "" {
		initial = enum.PreOrderStatusDraft
	}

	key := watchKey{outletID: outletID, orderID: orderID}

	t.mu.Lock()
	defer t.mu.Unlock()

	if w, ok := t.watches[key]; ok && w.status.Watching {
		return w.status
	}

	w := &watch{
		status: Status{
			OrderID:   orderID,
			OutletID:  outletID,
			Status:    initial,
			UpdatedAt: time.Now(),
		},
		done: make(chan struct{}),
	}
	t.watches[key] = w

	if enum.IsTerminalPreOrderStatus(initial) {
		close(w.done)
		return w.status
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.status.Watching = true
	go t.run(ctx, w, orderID, initial)
	return w.status
}

func (t *Tracker) run(ctx context.Context, w *watch, orderID, initial string) {
	defer close(w.done)

	opts := append(t.opts[:len(t.opts):len(t.opts)], WithStatusHandler(func(_, status string) {
		t.statusChanged(w, status)
	}))
	final, err := NewPoller(t.checker, t.logger, opts...).Run(ctx, orderID, initial)

	t.mu.Lock()
	w.status.Watching = false
	t.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		t.logger.Error().Err(err).Str("preorder_id", orderID).Msg("pre-order polling stopped")
		return
	}
	t.logger.Debug().Str("preorder_id", orderID).Str("status", final).Msg("pre-order polling finished")
}

func (t *Tracker) statusChanged(w *watch, status string) {
	t.mu.Lock()
	w.status.Status = status
	w.status.UpdatedAt = time.Now()
	outletID, orderID := w.status.OutletID, w.status.OrderID
	t.mu.Unlock()

	if t.notifier != nil {
		t.notifier.PreOrderStatus(outletID, orderID, status)
	}
}

// Status returns the last known status of orderID as watched by the outlet.
func (t *Tracker) Status(outletID uuid.UUID, orderID string) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.watches[watchKey{outletID: outletID, orderID: orderID}]
	if !ok {
		return Status{}, ErrNotWatched
	}
	return w.status, nil
}

// Stop cancels the poll of orderID, waits for it to exit and forgets the
// order.
func (t *Tracker) Stop(outletID uuid.UUID, orderID string) error {
	key := watchKey{outletID: outletID, orderID: orderID}

	t.mu.Lock()
	w, ok := t.watches[key]
	if !ok {
		t.mu.Unlock()
		return ErrNotWatched
	}
	delete(t.watches, key)
	t.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
	return nil
}

// StopAll cancels every poll and waits for them to exit.
func (t *Tracker) StopAll() {
	t.mu.Lock()
	watches := t.watches
	t.watches = make(map[watchKey]*watch)
	t.mu.Unlock()

	for _, w := range watches {
		if w.cancel != nil {
			w.cancel()
		}
	}
	for _, w := range watches {
		<-w.done
	}
}
