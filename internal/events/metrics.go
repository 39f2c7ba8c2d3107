package events

import (
	"context"

	"github.com/kiwari-pos/register/internal/session"
)

// PaymentRecorder is satisfied by *metrics.Metrics.
type PaymentRecorder interface {
	PaymentCompleted(method string, total float64)
}

// MetricsHook counts completed payments.
type MetricsHook struct {
	rec PaymentRecorder
}

func NewMetricsHook(rec PaymentRecorder) *MetricsHook {
	return &MetricsHook{rec: rec}
}

func (h *MetricsHook) PaymentCompleted(_ context.Context, r session.Receipt) {
	h.rec.PaymentCompleted(r.Method, r.Order.Total.InexactFloat64())
}
