package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/metrics"
)

// InstrumentedService is a decorator that reports scoring outcomes to
// Prometheus collectors.
type InstrumentedService struct {
	inner   Service
	metrics *metrics.Metrics
}

// WithMetrics wraps a Service with metrics collection.
func WithMetrics(s Service, m *metrics.Metrics) Service {
	return &InstrumentedService{inner: s, metrics: m}
}

func (i *InstrumentedService) Estimate(ctx context.Context, pattern []irt.Response, previous float64) (irt.Estimation, error) {
	start := time.Now()
	est, err := i.inner.Estimate(ctx, pattern, previous)
	switch {
	case err == nil:
		i.metrics.ObserveEstimation(est, time.Since(start))
	case errors.Is(err, irt.ErrInvalidInput):
		i.metrics.ObserveInvalid(metrics.OpEstimate)
	}
	return est, err
}

func (i *InstrumentedService) Select(ctx context.Context, pool []irt.Question, theta float64) (irt.Selection, error) {
	start := time.Now()
	sel, err := i.inner.Select(ctx, pool, theta)
	switch {
	case err == nil:
		i.metrics.ObserveSelection(sel, time.Since(start))
	case errors.Is(err, irt.ErrInvalidInput):
		i.metrics.ObserveInvalid(metrics.OpSelect)
	}
	return sel, err
}
