package irt

// Likelihood is the Bernoulli log-likelihood of a response pattern under the
// 2PL model, viewed as a function of theta.
type Likelihood struct {
	a []float64
	b []float64
	u []float64
}

// NewLikelihood extracts the parallel parameter and outcome arrays from a
// response pattern.
func NewLikelihood(pattern []Response) Likelihood {
	l := Likelihood{
		a: make([]float64, len(pattern)),
		b: make([]float64, len(pattern)),
		u: make([]float64, len(pattern)),
	}
	for i, r := range pattern {
		l.a[i] = r.A
		l.b[i] = r.B
		if r.Correct {
			l.u[i] = 1
		}
	}
	return l
}

// Len returns the number of responses.
func (l Likelihood) Len() int { return len(l.a) }

// Score is the first derivative of the log-likelihood at theta.
func (l Likelihood) Score(theta float64) float64 {
	var s float64
	for i := range l.a {
		s += Scaling * l.a[i] * (l.u[i] - Probability(l.a[i], l.b[i], theta))
	}
	return s
}

// Curvature is the second derivative of the log-likelihood at theta: the
// negated test information of the administered items.
func (l Likelihood) Curvature(theta float64) float64 {
	return -l.Information(theta)
}

// Derivatives returns Score and Curvature together. It satisfies RootFunc.
func (l Likelihood) Derivatives(theta float64) (float64, float64) {
	return l.Score(theta), l.Curvature(theta)
}

// Information sums the information of the administered items at theta.
// It is +0, never -0, when every term underflows.
func (l Likelihood) Information(theta float64) float64 {
	var sum float64
	for i := range l.a {
		sum += Information(l.a[i], l.b[i], theta)
	}
	return sum
}
