// Package metrics exposes Prometheus collectors for the conversion UI.
//
// All methods are safe on a nil *Metrics, so components can be built without metrics
// in tests and tools.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors.
type Metrics struct {
	validations    *prometheus.CounterVec
	drops          *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	activeSessions prometheus.Gauge
	patchesSent    prometheus.Counter
	wsErrors       *prometheus.CounterVec
}

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "md2xlsx_ui").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Buckets are the histogram buckets for remote call duration.
	Buckets []float64
}

// New creates and registers the collectors.
func New(cfg Config) (*Metrics, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "md2xlsx_ui"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}

	m := &Metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "validations_total",
			Help:      "File validations by result.",
		}, []string{"result"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "drops_total",
			Help:      "Drop events by outcome (accepted, partial, rejected).",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "notifications_total",
			Help:      "Notifications shown by severity.",
		}, []string{"severity"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "submissions_total",
			Help:      "Submission attempts by terminal state.",
		}, []string{"state"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Duration of conversion endpoint calls.",
			Buckets:   cfg.Buckets,
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_sessions",
			Help:      "Connected UI sessions.",
		}),
		patchesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "patches_sent_total",
			Help:      "Document patches sent to browsers.",
		}),
		wsErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{
		m.validations, m.drops, m.notifications, m.submissions,
		m.remoteDuration, m.activeSessions, m.patchesSent, m.wsErrors,
	} {
		if err := cfg.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Validation counts one validator verdict.
func (m *Metrics) Validation(ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.validations.WithLabelValues(result).Inc()
}

// Drop counts one drop event.
func (m *Metrics) Drop(outcome string) {
	if m == nil {
		return
	}
	m.drops.WithLabelValues(outcome).Inc()
}

// Notification counts one notification.
func (m *Metrics) Notification(severity string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(severity).Inc()
}

// Submission counts one finished submission attempt.
func (m *Metrics) Submission(state string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(state).Inc()
}

// RemoteCall records the duration of one conversion call.
func (m *Metrics) RemoteCall(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// PatchesSent counts patches written to a browser.
func (m *Metrics) PatchesSent(n int) {
	if m == nil {
		return
	}
	m.patchesSent.Add(float64(n))
}

// WebSocketError counts one WebSocket failure.
func (m *Metrics) WebSocketError(kind string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(kind).Inc()
}
