package irt

import "math"

// Response is one scored answer in a response pattern.
type Response struct {
	QuestionID string  `json:"questionId"`
	A          float64 `json:"a" validate:"finite,gt=0"`
	B          float64 `json:"b" validate:"finite"`
	Correct    bool    `json:"isCorrect"`
}

// Estimation is the result of one TraitEstimator call.
type Estimation struct {
	// Theta is the reported estimate, bounded by the policy.
	Theta float64
	// RawTheta is the solver output before clipping.
	RawTheta float64
	// Clipped is true when Theta sits on a policy bound.
	Clipped bool
	// StandardError is evaluated at the previous theta, not at RawTheta.
	StandardError float64
	Iterations    int
	Converged     bool
	// End is true once the stopping rule is met.
	End bool
	// ItemCount is the length of the response pattern.
	ItemCount int
}

type estimateInput struct {
	Pattern  []Response `json:"responsePattern" validate:"required,min=1,dive"`
	Previous float64    `json:"previousLatentTraitEstimate" validate:"finite"`
}

// Estimator updates the ability estimate from a response pattern.
type Estimator struct {
	policy Policy
}

// NewEstimator returns an Estimator for the given policy.
func NewEstimator(p Policy) (*Estimator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{policy: p}, nil
}

// Policy returns the policy the estimator runs with.
func (e *Estimator) Policy() Policy { return e.policy }

// Estimate runs Newton-Raphson on the log-likelihood of pattern starting at
// previous. A run that does not converge still returns a usable estimate.
func (e *Estimator) Estimate(pattern []Response, previous float64) (Estimation, error) {
	if err := validateStruct(&estimateInput{Pattern: pattern, Previous: previous}); err != nil {
		return Estimation{}, err
	}

	n := len(pattern)
	lik := NewLikelihood(pattern)
	res := Newton(lik, previous, e.policy.Tolerance, e.policy.MaxIterations(n))

	// Standard error at the pre-update theta; kept for parity with the
	// reference scorer.
	se := math.Sqrt(1 / lik.Information(previous))

	theta, clipped := e.policy.Clip(res.Root)
	return Estimation{
		Theta:         theta,
		RawTheta:      res.Root,
		Clipped:       clipped,
		StandardError: se,
		Iterations:    res.Iterations,
		Converged:     res.Converged,
		End:           e.policy.ShouldEnd(n, se),
		ItemCount:     n,
	}, nil
}

var defaultEstimator = &Estimator{policy: DefaultPolicy()}

// Estimate runs the estimator with DefaultPolicy.
func Estimate(pattern []Response, previous float64) (Estimation, error) {
	return defaultEstimator.Estimate(pattern, previous)
}
