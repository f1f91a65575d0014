// Package metrics exposes Prometheus counters and histograms for password
// generation and analysis. Only counts, durations and strength tiers are
// recorded; generated values never reach a label.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the passforge collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	// Passwords generated, by whether the random source was cryptographic
	PasswordsGenerated *prometheus.CounterVec

	// Failed operations by operation and error code
	Errors *prometheus.CounterVec

	// Strength tiers of analyzed passwords
	StrengthTier *prometheus.CounterVec

	// Wall time of one generate call (single or batch)
	GenerateLatency prometheus.Histogram
}

// New creates a Metrics instance backed by its own registry, so independent
// instances can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PasswordsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passforge_passwords_generated_total",
			Help: "Total passwords generated",
		}, []string{"secure"}), // secure: "true", "false"

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passforge_errors_total",
			Help: "Total failed operations by operation and error code",
		}, []string{"operation", "code"}),

		StrengthTier: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passforge_strength_tier_total",
			Help: "Total analyzed passwords by strength tier",
		}, []string{"tier"}),

		GenerateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "passforge_generate_duration_seconds",
			Help:    "Duration of generate operations including batches",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AddGenerated records n generated passwords.
func (m *Metrics) AddGenerated(n int, secure bool) {
	if m == nil {
		return
	}
	label := "false"
	if secure {
		label = "true"
	}
	m.PasswordsGenerated.WithLabelValues(label).Add(float64(n))
}

// IncrementError records a failed operation.
func (m *Metrics) IncrementError(operation, code string) {
	if m != nil {
		m.Errors.WithLabelValues(operation, code).Inc()
	}
}

// IncrementTier records the strength tier of an analyzed password.
func (m *Metrics) IncrementTier(tier string) {
	if m != nil {
		m.StrengthTier.WithLabelValues(tier).Inc()
	}
}

// ObserveGenerateLatency records the duration of a generate call.
func (m *Metrics) ObserveGenerateLatency(d time.Duration) {
	if m != nil {
		m.GenerateLatency.Observe(d.Seconds())
	}
}
