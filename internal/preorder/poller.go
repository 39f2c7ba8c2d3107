package preorder

import (
	"context"
	"time"

	"github.com/kiwari-pos/register/internal/enum"
	"github.com/rs/zerolog"
)

// DefaultInterval is the pause between two status checks.
const DefaultInterval = 5 * time.Second

// Check results reported to a CheckObserver.
const (
	CheckOK    = "ok"
	CheckError = "error"
)

// CheckObserver is told about every status check.
type CheckObserver interface {
	PreOrderChecked(result string)
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithStatusHandler is called whenever a check observes a new status.
func WithStatusHandler(fn func(orderID, status string)) Option {
	return func(p *Poller) { p.onStatus = fn }
}

func WithCheckObserver(o CheckObserver) Option {
	return func(p *Poller) { p.observer = o }
}

// Poller polls a StatusChecker at a fixed interval.
type Poller struct {
	checker  StatusChecker
	interval time.Duration
	logger   zerolog.Logger
	onStatus func(orderID, status string)
	observer CheckObserver
}

func NewPoller(checker StatusChecker, logger zerolog.Logger, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		interval: DefaultInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls orderID until a terminal status (PREPARING, COMPLETED,
// CANCELLED) is observed or ctx is cancelled, and returns the last known
// status. Checks run one at a time on the ticker; a failed check is logged
// and the next tick tries again. Cancellation returns ctx.Err().
func (p *Poller) Run(ctx context.Context, orderID, initial string) (string, error) {
	status := initial
	if enum.IsTerminalPreOrderStatus(status) {
		return status, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log := p.logger.With().Str("preorder_id", orderID).Logger()
	log.Debug().Str("status", status).Dur("interval", p.interval).Msg("polling pre-order")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("pre-order polling cancelled")
			return status, ctx.Err()
		case <-ticker.C:
		}

		next, err := p.checker.CheckStatus(ctx, orderID)
		if err != nil {
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			log.Warn().Err(err).Msg("pre-order status check failed")
			p.observe(CheckError)
			continue
		}
		p.observe(CheckOK)

		if next != status {
			log.Info().Str("from", status).Str("to", next).Msg("pre-order status changed")
			status = next
			if p.onStatus != nil {
				p.onStatus(orderID, status)
			}
		}
		if enum.IsTerminalPreOrderStatus(status) {
			return status, nil
		}
	}
}

func (p *Poller) observe(result string) {
	if p.observer != nil {
		p.observer.PreOrderChecked(result)
	}
}
