// Package obsmetrics holds the Prometheus collectors SqlGuard exposes
// for its validation pipeline: call volume, violation counts by kind and
// risk level, rewriter activity, and dedup hit rate.
package obsmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector registered against one Registry.
type Metrics struct {
	ValidationsTotal    *prometheus.CounterVec
	ValidationDuration  *prometheus.HistogramVec
	ViolationsTotal     *prometheus.CounterVec
	DedupSkipsTotal     prometheus.Counter
	ParseFailuresTotal  prometheus.Counter
	CheckerPanicsTotal  *prometheus.CounterVec
	RewritesAppliedTotal *prometheus.CounterVec
	RewriterFailuresTotal *prometheus.CounterVec
}

// New builds and registers the full collector set against registry.
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlguard_validations_total",
				Help: "Total number of validate() calls by outcome",
			},
			[]string{"outcome"},
		),
		ValidationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sqlguard_validation_duration_seconds",
				Help:    "Duration of validate() calls",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"outcome"},
		),
		ViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlguard_violations_total",
				Help: "Total number of violations raised, by checker kind and risk level",
			},
			[]string{"kind", "risk_level"},
		),
		DedupSkipsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sqlguard_dedup_skips_total",
				Help: "Total number of validate() calls skipped by the dedup filter",
			},
		),
		ParseFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sqlguard_parse_failures_total",
				Help: "Total number of strict parse failures",
			},
		),
		CheckerPanicsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlguard_checker_panics_total",
				Help: "Total number of checker panics recovered by the orchestrator, by checker name",
			},
			[]string{"checker"},
		),
		RewritesAppliedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlguard_rewrites_applied_total",
				Help: "Total number of rewrites that changed the statement, by rewriter name",
			},
			[]string{"rewriter"},
		),
		RewriterFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlguard_rewriter_failures_total",
				Help: "Total number of rewriter panics/errors recovered by the pipeline, by rewriter name",
			},
			[]string{"rewriter"},
		),
	}
}

// ObserveValidation records one validate() call's outcome and duration.
func (m *Metrics) ObserveValidation(outcome string, d time.Duration) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
	m.ValidationDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveViolation records one violation by kind and risk level.
func (m *Metrics) ObserveViolation(kind, riskLevel string) {
	m.ViolationsTotal.WithLabelValues(kind, riskLevel).Inc()
}
