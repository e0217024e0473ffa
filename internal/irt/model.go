// Package irt implements scoring for computerized adaptive tests under the
// two-parameter logistic (2PL) item response model: ability estimation by
// Newton-Raphson maximum likelihood and maximum-information item selection.
//
// Everything in this package is pure and stateless. Callers own the running
// ability estimate and the response history and pass them in on every call.
package irt

import "math"

// Scaling is the logistic-to-normal-ogive constant used by the 2PL model.
const Scaling = 1.7

// Item holds the 2PL parameters of a single test item.
type Item struct {
	// A is the discrimination. Must be positive.
	A float64 `json:"a" yaml:"a"`
	// B is the difficulty: the theta at which P(correct) = 0.5.
	B float64 `json:"b" yaml:"b"`
}

// Probability returns P(correct | theta) for an item with discrimination a
// and difficulty b.
func Probability(a, b, theta float64) float64 {
	return 1 / (1 + math.Exp(-Scaling*a*(theta-b)))
}

// Information returns the Fisher information an item carries at theta.
// It peaks at theta == b and grows with a.
func Information(a, b, theta float64) float64 {
	p := Probability(a, b, theta)
	return Scaling * Scaling * a * a * p * (1 - p)
}

// Probabilities evaluates Probability for every item at a single theta.
func Probabilities(items []Item, theta float64) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = Probability(it.A, it.B, theta)
	}
	return out
}

// ProbabilityMatrix broadcasts items against a batch of thetas. The result
// has one row per item and one column per theta.
func ProbabilityMatrix(items []Item, thetas []float64) [][]float64 {
	out := make([][]float64, len(items))
	for i, it := range items {
		row := make([]float64, len(thetas))
		for j, t := range thetas {
			row[j] = Probability(it.A, it.B, t)
		}
		out[i] = row
	}
	return out
}

// Informations evaluates Information for every item at a single theta.
func Informations(items []Item, theta float64) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = Information(it.A, it.B, theta)
	}
	return out
}

// InformationMatrix is the Information counterpart of ProbabilityMatrix.
func InformationMatrix(items []Item, thetas []float64) [][]float64 {
	out := make([][]float64, len(items))
	for i, it := range items {
		row := make([]float64, len(thetas))
		for j, t := range thetas {
			row[j] = Information(it.A, it.B, t)
		}
		out[i] = row
	}
	return out
}

// TestInformation sums the information of all items at theta.
func TestInformation(items []Item, theta float64) float64 {
	var sum float64
	for _, it := range items {
		sum += Information(it.A, it.B, theta)
	}
	return sum
}
