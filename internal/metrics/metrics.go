// Package metrics provides Prometheus metrics for the validation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

const namespace = "jsv"

// Result label values.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	ValidationsTotal   *prometheus.CounterVec
	IssuesTotal        *prometheus.CounterVec
	CompilesTotal      *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	CachedSchemas      prometheus.GaugeFunc
}

// New creates the metrics and registers them on a fresh registry, together
// with the Go and process collectors. cached reports the number of compiled
// schemas held; it may be nil.
func New(cached func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		ValidationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of validations by result",
		}, []string{"result"}),
		IssuesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Total number of issues reported by code",
		}, []string{"code"}),
		CompilesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_compilations_total",
			Help:      "Total number of schema compilations by result",
		}, []string{"result"}),
		ValidationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent compiling and validating a request",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
	}
	if cached != nil {
		m.CachedSchemas = f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_schemas",
			Help:      "Number of compiled schemas held for reuse",
		}, func() float64 { return float64(cached()) })
	}
	return m
}

// ObserveValidation records the outcome of one validation that started at
// start. err is the result of Validate.
func (m *Metrics) ObserveValidation(start time.Time, err error) {
	m.ValidationDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		m.ValidationsTotal.WithLabelValues(ResultValid).Inc()
		return
	}
	iss, ok := diagnostics.AsIssues(err)
	if !ok {
		m.ValidationsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.ValidationsTotal.WithLabelValues(ResultInvalid).Inc()
	for _, i := range iss {
		m.IssuesTotal.WithLabelValues(string(i.Code)).Inc()
	}
}

// ObserveCompile records a schema compilation.
func (m *Metrics) ObserveCompile(compiled bool) {
	if compiled {
		m.CompilesTotal.WithLabelValues(ResultValid).Inc()
		return
	}
	m.CompilesTotal.WithLabelValues(ResultInvalid).Inc()
}

// ObserveError records a request rejected before validation.
func (m *Metrics) ObserveError() {
	m.ValidationsTotal.WithLabelValues(ResultError).Inc()
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
