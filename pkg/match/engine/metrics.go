package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the matching engine.
type Metrics struct {
	// Per-application evaluations
	evaluations      prometheus.Counter
	evaluationErrors *prometheus.CounterVec
	duration         prometheus.Histogram

	// Per-lender outcomes
	lenderOutcomes *prometheus.CounterVec
	eligibleCount  prometheus.Histogram

	// Per-rule outcomes
	ruleOutcomes *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with Prometheus collectors
// registered on reg. A nil reg uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		evaluations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "atlas_match_evaluations_total",
				Help: "Total number of applications evaluated",
			},
		),

		evaluationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_match_evaluation_errors_total",
				Help: "Total number of per-lender evaluation failures",
			},
			[]string{"lender_id", "kind"},
		),

		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "atlas_match_evaluation_duration_seconds",
				Help:    "Time to evaluate one application against the full policy set",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
		),

		lenderOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_match_lender_outcomes_total",
				Help: "Per-lender evaluation outcomes (eligible, ineligible, error)",
			},
			[]string{"lender_id", "outcome"},
		),

		eligibleCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "atlas_match_eligible_lenders",
				Help:    "Number of eligible lenders per evaluation",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
		),

		ruleOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_match_rule_outcomes_total",
				Help: "Per-rule pass/fail counts",
			},
			[]string{"rule", "outcome"},
		),
	}
}

// RecordEvaluation records a completed application evaluation.
func (m *Metrics) RecordEvaluation(eligible int, duration time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.Inc()
	m.duration.Observe(duration.Seconds())
	m.eligibleCount.Observe(float64(eligible))
}

// RecordLenderOutcome records one lender's outcome.
func (m *Metrics) RecordLenderOutcome(lenderID, outcome string) {
	if m == nil {
		return
	}
	m.lenderOutcomes.WithLabelValues(lenderID, outcome).Inc()
}

// RecordEvaluationError records a per-lender evaluation failure.
func (m *Metrics) RecordEvaluationError(lenderID, kind string) {
	if m == nil {
		return
	}
	m.evaluationErrors.WithLabelValues(lenderID, kind).Inc()
}

// RecordRuleOutcome records one rule evaluation.
func (m *Metrics) RecordRuleOutcome(rule string, passed bool) {
	if m == nil {
		return
	}
	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	m.ruleOutcomes.WithLabelValues(rule, outcome).Inc()
}
