package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evaluationTotal counts formula evaluations by validity
	evaluationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formula_evaluations_total",
		Help: "Total formula evaluations by validity",
	}, []string{"validity"})

	// evaluationDuration tracks parse plus evaluation latency per formula
	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "formula_evaluation_duration_seconds",
		Help:    "Formula parse and evaluation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	})

	// resolverErrors counts resolver failures other than unknown keys
	resolverErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formula_resolver_errors_total",
		Help: "Total resolver failures during evaluation",
	})

	// runTotal counts batch runs by result
	runTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formula_runs_total",
		Help: "Total batch runs by result",
	}, []string{"result"})

	// runFormulas tracks batch sizes
	runFormulas = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "formula_run_formulas",
		Help:    "Number of formulas per batch run",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
	})
)
