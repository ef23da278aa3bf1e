// Package metrics registers the pipeline's Prometheus instruments. They
// are registered globally via promauto; tests measure increments rather
// than absolute values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activationCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_activation_cycles_total",
			Help: "Activation cycles by terminal result (ready, session_error, torn_down).",
		},
		[]string{"result"},
	)

	methodActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_method_activations_total",
			Help: "Per-method adapter activations by result (ready, error, unavailable, blocked).",
		},
		[]string{"method", "result"},
	)

	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_attempts_total",
			Help: "Click-triggered payment sub-flows by method and result (requestable, error, cancelled).",
		},
		[]string{"method", "result"},
	)

	sessionCreateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_session_create_duration_seconds",
			Help:    "Latency of session bootstrap against the payment network.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Result label values.
const (
	ResultReady        = "ready"
	ResultError        = "error"
	ResultUnavailable  = "unavailable"
	ResultBlocked      = "blocked"
	ResultSessionError = "session_error"
	ResultTornDown     = "torn_down"
	ResultRequestable  = "requestable"
	ResultCancelled    = "cancelled"
)

// CountCycle records one activation cycle outcome.
func CountCycle(result string) {
	activationCyclesTotal.WithLabelValues(result).Inc()
}

// CountMethodActivation records one adapter activation outcome.
func CountMethodActivation(method, result string) {
	methodActivationsTotal.WithLabelValues(method, result).Inc()
}

// CountPayment records one payment sub-flow outcome.
func CountPayment(method, result string) {
	paymentsTotal.WithLabelValues(method, result).Inc()
}

// ObserveSessionCreate records one session bootstrap latency in seconds.
func ObserveSessionCreate(seconds float64) {
	sessionCreateDuration.Observe(seconds)
}

// GetActivationCyclesTotal exposes the counter for tests.
func GetActivationCyclesTotal() *prometheus.CounterVec { return activationCyclesTotal }

// GetMethodActivationsTotal exposes the counter for tests.
func GetMethodActivationsTotal() *prometheus.CounterVec { return methodActivationsTotal }

// GetPaymentsTotal exposes the counter for tests.
func GetPaymentsTotal() *prometheus.CounterVec { return paymentsTotal }

// GetSessionCreateDuration exposes the histogram for tests.
func GetSessionCreateDuration() prometheus.Histogram { return sessionCreateDuration }
