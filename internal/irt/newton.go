package irt

import "math"

// RootFunc returns f(x) and f'(x).
type RootFunc interface {
	Derivatives(x float64) (float64, float64)
}

// NewtonResult is the outcome of a Newton-Raphson run.
type NewtonResult struct {
	Root       float64
	Iterations int
	Converged  bool
}

// Newton searches for a root of f starting at x0. It stops as converged when
// f(x) is exactly zero or when successive iterates differ by at most tol, and
// as not converged when the derivative vanishes, when an iterate stops being
// finite, or after maxIter steps. On a non-finite iterate Root is the last
// finite one.
func Newton(f RootFunc, x0, tol float64, maxIter int) NewtonResult {
	if maxIter < 1 {
		maxIter = 1
	}
	x := x0
	for k := 0; k < maxIter; k++ {
		fx, dfx := f.Derivatives(x)
		if fx == 0 {
			return NewtonResult{Root: x, Iterations: k, Converged: true}
		}
		if dfx == 0 || math.IsNaN(fx) || math.IsNaN(dfx) {
			return NewtonResult{Root: x, Iterations: k + 1}
		}
		next := x - fx/dfx
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return NewtonResult{Root: x, Iterations: k + 1}
		}
		if math.Abs(next-x) <= tol {
			return NewtonResult{Root: next, Iterations: k + 1, Converged: true}
		}
		x = next
	}
	return NewtonResult{Root: x, Iterations: maxIter}
}
