// Package metrics exposes register counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "register"

// Metrics holds the collectors on a private registry.
// Satisfies session.Observer and preorder.CheckObserver.
type Metrics struct {
	registry *prometheus.Registry

	paymentsCompleted *prometheus.CounterVec
	revenue           *prometheus.CounterVec
	itemsAdded        prometheus.Counter
	activeSessions    prometheus.Gauge
	preorderChecks    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		paymentsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_completed_total",
			Help:      "Completed payments by method.",
		}, []string{"method"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Sum of completed order totals by method.",
		}, []string{"method"}),
		itemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "line_items_added_total",
			Help:      "Line items added to orders.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open POS sessions.",
		}),
		preorderChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preorder_checks_total",
			Help:      "Pre-order status checks by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.paymentsCompleted,
		m.revenue,
		m.itemsAdded,
		m.activeSessions,
		m.preorderChecks,
	)
	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PaymentCompleted counts one completed payment of total.
func (m *Metrics) PaymentCompleted(method string, total float64) {
	m.paymentsCompleted.WithLabelValues(method).Inc()
	m.revenue.WithLabelValues(method).Add(total)
}

func (m *Metrics) SessionOpened(uuid.UUID) { m.activeSessions.Inc() }
func (m *Metrics) SessionClosed(uuid.UUID) { m.activeSessions.Dec() }

func (m *Metrics) ItemsAdded(_ uuid.UUID, n int) { m.itemsAdded.Add(float64(n)) }

func (m *Metrics) PreOrderChecked(result string) {
	m.preorderChecks.WithLabelValues(result).Inc()
}
