package irt

// Policy holds the numeric settings of the estimator and the termination
// rule. DefaultPolicy reproduces the reference scoring behavior; overriding
// fields changes results and is meant for experiments.
type Policy struct {
	// Tolerance is the absolute Newton-Raphson step tolerance.
	Tolerance float64 `koanf:"tolerance" validate:"finite,gt=0"`
	// WarmupItems bounds iterations while few responses exist:
	// at most max(n-WarmupItems, 1) Newton steps are taken.
	WarmupItems int `koanf:"warmup_items" validate:"gte=0"`
	// MinItems is the minimum test length before the test may end.
	MinItems int `koanf:"min_items" validate:"gte=0"`
	// MaxStandardError is the precision at which the test may end.
	MaxStandardError float64 `koanf:"max_standard_error" validate:"finite,gt=0"`
	// ThetaMin and ThetaMax bound the reported estimate.
	ThetaMin float64 `koanf:"theta_min" validate:"finite,ltfield=ThetaMax"`
	ThetaMax float64 `koanf:"theta_max" validate:"finite"`
}

// DefaultPolicy returns the reference settings.
func DefaultPolicy() Policy {
	return Policy{
		Tolerance:        1e-3,
		WarmupItems:      5,
		MinItems:         15,
		MaxStandardError: 0.3,
		ThetaMin:         -4,
		ThetaMax:         4,
	}
}

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	return validateStruct(&p)
}

// MaxIterations is the Newton-Raphson iteration cap for n responses.
func (p Policy) MaxIterations(n int) int {
	return max(n-p.WarmupItems, 1)
}

// Clip bounds theta to [ThetaMin, ThetaMax] and reports whether the result
// sits on a bound.
func (p Policy) Clip(theta float64) (float64, bool) {
	t := min(max(theta, p.ThetaMin), p.ThetaMax)
	return t, t == p.ThetaMin || t == p.ThetaMax
}

// ShouldEnd reports whether a test with n responses and the given standard
// error has reached its stopping rule. Both conditions are required.
func (p Policy) ShouldEnd(n int, standardError float64) bool {
	return n >= p.MinItems && standardError <= p.MaxStandardError
}
