// Package metrics exposes Prometheus collectors for scoring operations.
package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhisek/irtcat/internal/irt"
)

const namespace = "irtcat"

// Operation labels.
const (
	OpEstimate = "estimate"
	OpSelect   = "select"
)

// Metrics holds the scoring collectors.
//
//   - irtcat_estimations_total{converged} - trait estimates produced
//   - irtcat_estimation_iterations - Newton-Raphson iterations per estimate
//   - irtcat_standard_error - reported standard errors (finite only)
//   - irtcat_clipped_total - estimates clipped to a bound
//   - irtcat_terminations_total - estimates that met the stopping rule
//   - irtcat_selections_total - items selected
//   - irtcat_selection_ties - candidates tied for maximum information
//   - irtcat_invalid_input_total{operation} - rejected requests
//   - irtcat_operation_duration_seconds{operation} - scoring latency
//
// All methods are no-ops on a nil *Metrics.
type Metrics struct {
	Estimations   *prometheus.CounterVec
	Iterations    prometheus.Histogram
	StandardError prometheus.Histogram
	Clipped       prometheus.Counter
	Terminations  prometheus.Counter
	Selections    prometheus.Counter
	Ties          prometheus.Histogram
	InvalidInput  *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Estimations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimations_total",
			Help:      "Total number of latent trait estimates produced",
		}, []string{"converged"}),
		Iterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimation_iterations",
			Help:      "Newton-Raphson iterations used per estimate",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		StandardError: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standard_error",
			Help:      "Standard error of reported estimates",
			Buckets:   []float64{0.1, 0.2, 0.25, 0.3, 0.4, 0.5, 0.75, 1, 2},
		}),
		Clipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clipped_total",
			Help:      "Total number of estimates clipped to the reporting bounds",
		}),
		Terminations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminations_total",
			Help:      "Total number of estimates that met the stopping rule",
		}),
		Selections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Total number of items selected",
		}),
		Ties: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selection_ties",
			Help:      "Number of candidates tied for maximum information",
			Buckets:   []float64{1, 2, 3, 5, 10},
		}),
		InvalidInput: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_input_total",
			Help:      "Total number of rejected scoring requests",
		}, []string{"operation"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent in scoring operations",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"operation"}),
	}
}

// ObserveEstimation records a successful estimate.
func (m *Metrics) ObserveEstimation(est irt.Estimation, d time.Duration) {
	if m == nil {
		return
	}
	converged := "false"
	if est.Converged {
		converged = "true"
	}
	m.Estimations.WithLabelValues(converged).Inc()
	m.Iterations.Observe(float64(est.Iterations))
	if !math.IsInf(est.StandardError, 0) && !math.IsNaN(est.StandardError) {
		m.StandardError.Observe(est.StandardError)
	}
	if est.Clipped {
		m.Clipped.Inc()
	}
	if est.End {
		m.Terminations.Inc()
	}
	m.Duration.WithLabelValues(OpEstimate).Observe(d.Seconds())
}

// ObserveSelection records a successful selection.
func (m *Metrics) ObserveSelection(sel irt.Selection, d time.Duration) {
	if m == nil {
		return
	}
	m.Selections.Inc()
	m.Ties.Observe(float64(sel.Ties))
	m.Duration.WithLabelValues(OpSelect).Observe(d.Seconds())
}

// ObserveInvalid records a rejected request for op.
func (m *Metrics) ObserveInvalid(op string) {
	if m == nil {
		return
	}
	m.InvalidInput.WithLabelValues(op).Inc()
}
