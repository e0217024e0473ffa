// Package simulate runs adaptive tests against simulated examinees with
// known abilities and reports how well the estimator recovers them.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/irtcat/internal/bank"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/scoring"
	"github.com/abhisek/irtcat/internal/session"
)

// Config controls a simulation run.
type Config struct {
	Examinees int
	// True abilities are drawn uniformly from [ThetaMin, ThetaMax].
	ThetaMin float64
	ThetaMax float64
	// MaxItems caps each test. Zero means no cap.
	MaxItems int
	// Seed makes runs reproducible regardless of Workers.
	Seed uint64
	// Workers bounds concurrency. Zero means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns a 500-examinee run over [-3, 3].
func DefaultConfig() Config {
	return Config{
		Examinees: 500,
		ThetaMin:  -3,
		ThetaMax:  3,
		MaxItems:  30,
		Seed:      1,
	}
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	var errs []error
	if c.Examinees < 1 {
		errs = append(errs, fmt.Errorf("examinees must be at least 1, got %d", c.Examinees))
	}
	if !(c.ThetaMin <= c.ThetaMax) {
		errs = append(errs, fmt.Errorf("theta range [%v, %v] is empty", c.ThetaMin, c.ThetaMax))
	}
	if c.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("max items must not be negative, got %d", c.MaxItems))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Result is the outcome of one simulated test.
type Result struct {
	TrueTheta     float64
	Estimate      float64
	StandardError float64
	Items         int
	Reason        session.EndReason
}

// Report aggregates a run.
type Report struct {
	Examinees int
	// Bias is the mean of Estimate - TrueTheta.
	Bias float64
	RMSE float64
	// MeanItems is the mean test length.
	MeanItems float64
	// MeanStandardError averages the finite final standard errors.
	MeanStandardError float64
	// PrecisionShare is the fraction of tests stopped by the estimator.
	PrecisionShare float64
	Results        []Result
}

// Wrapper decorates the per-examinee scoring service, e.g. with metrics.
type Wrapper func(scoring.Service) scoring.Service

// Run simulates cfg.Examinees adaptive tests over b. Each examinee gets its
// own generator derived from cfg.Seed, which drives the true ability, the
// responses and the selector's tie-breaks.
func Run(ctx context.Context, b *bank.Bank, est *irt.Estimator, cfg Config, wrap Wrapper) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, cfg.Examinees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range results {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
			var svc scoring.Service = scoring.New(est, irt.NewSelector(rng))
			if wrap != nil {
				svc = wrap(svc)
			}

			res, err := examinee(gctx, b, svc, rng, cfg)
			if err != nil {
				return fmt.Errorf("examinee %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarize(results), nil
}

// examinee runs one test, answering each item with the 2PL probability of
// the examinee's true ability.
func examinee(ctx context.Context, b *bank.Bank, svc scoring.Service, rng *rand.Rand, cfg Config) (Result, error) {
	trueTheta := cfg.ThetaMin + (cfg.ThetaMax-cfg.ThetaMin)*rng.Float64()
	s := session.New(b, svc, session.Config{MaxItems: cfg.MaxItems})

	for !s.Done() {
		it, err := s.Next(ctx)
		if err != nil {
			return Result{}, err
		}
		correct := rng.Float64() < irt.Probability(it.A, it.B, trueTheta)
		if _, err := s.Record(ctx, correct); err != nil {
			return Result{}, err
		}
	}

	return Result{
		TrueTheta:     trueTheta,
		Estimate:      s.Theta,
		StandardError: s.Last.StandardError,
		Items:         s.Administered(),
		Reason:        s.Reason(),
	}, nil
}

func summarize(results []Result) *Report {
	r := &Report{Examinees: len(results), Results: results}
	n := float64(len(results))

	var sumErr, sumSq, sumItems, sumSE float64
	var finiteSE, precision int
	for _, res := range results {
		d := res.Estimate - res.TrueTheta
		sumErr += d
		sumSq += d * d
		sumItems += float64(res.Items)
		if !math.IsInf(res.StandardError, 0) && !math.IsNaN(res.StandardError) {
			sumSE += res.StandardError
			finiteSE++
		}
		if res.Reason == session.EndPrecision {
			precision++
		}
	}

	r.Bias = sumErr / n
	r.RMSE = math.Sqrt(sumSq / n)
	r.MeanItems = sumItems / n
	r.MeanStandardError = math.NaN()
	if finiteSE > 0 {
		r.MeanStandardError = sumSE / float64(finiteSE)
	}
	r.PrecisionShare = float64(precision) / n
	return r
}
