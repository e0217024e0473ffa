// Package scoring puts the stateless IRT core behind a context-aware
// service so that audit logging and metrics can be layered on as decorators.
package scoring

import (
	"context"

	"github.com/abhisek/irtcat/internal/irt"
)

// Service is the boundary every caller scores through.
type Service interface {
	// Estimate updates the latent trait estimate from a response pattern.
	Estimate(ctx context.Context, pattern []irt.Response, previous float64) (irt.Estimation, error)

	// Select picks the most informative question at theta.
	Select(ctx context.Context, pool []irt.Question, theta float64) (irt.Selection, error)
}

type core struct {
	est *irt.Estimator
	sel *irt.Selector
}

// New returns a Service backed directly by est and sel.
func New(est *irt.Estimator, sel *irt.Selector) Service {
	return &core{est: est, sel: sel}
}

func (c *core) Estimate(ctx context.Context, pattern []irt.Response, previous float64) (irt.Estimation, error) {
	if err := ctx.Err(); err != nil {
		return irt.Estimation{}, err
	}
	return c.est.Estimate(pattern, previous)
}

func (c *core) Select(ctx context.Context, pool []irt.Question, theta float64) (irt.Selection, error) {
	if err := ctx.Err(); err != nil {
		return irt.Selection{}, err
	}
	return c.sel.Select(pool, theta)
}
