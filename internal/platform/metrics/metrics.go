package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the console's Prometheus metrics.
type Metrics struct {
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      prometheus.Histogram
	GuardRedirectsTotal  *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. Passing a fresh
// registry keeps tests independent of the global default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pilipala_console_requests_total",
			Help: "Outbound API requests by outcome (ok, timeout, network_or_server)",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pilipala_console_request_duration_seconds",
			Help:    "Outbound API request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		GuardRedirectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pilipala_console_guard_redirects_total",
			Help: "Navigations redirected by the guard, by redirect target",
		}, []string{"target"}),
		ValidationRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pilipala_console_validation_rejections_total",
			Help: "Form submissions refused locally by validation, by form",
		}, []string{"form"}),
	}
}

// ObserveRequest records one finished request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.Observe(seconds)
}

// IncrementGuardRedirect counts a guard redirect. Safe on a nil receiver.
func (m *Metrics) IncrementGuardRedirect(target string) {
	if m == nil {
		return
	}
	m.GuardRedirectsTotal.WithLabelValues(target).Inc()
}

// IncrementValidationRejection counts a locally refused submission. Safe on a nil receiver.
func (m *Metrics) IncrementValidationRejection(form string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(form).Inc()
}
