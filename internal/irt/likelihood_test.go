package irt

import (
	"math"
	"testing"
)

func TestLikelihood_InformationPositiveZeroOnUnderflow(t *testing.T) {
	// 1.7*3*(4-(-4)) = 40.8 saturates P to exactly 1.
	lik := NewLikelihood([]Response{{A: 3, B: -4, Correct: true}})

	info := lik.Information(4)
	if info != 0 || math.Signbit(info) {
		t.Fatalf("Information(4) = %v (signbit %v), want +0", info, math.Signbit(info))
	}
	if se := math.Sqrt(1 / info); !math.IsInf(se, 1) {
		t.Errorf("sqrt(1/info) = %v, want +Inf", se)
	}
}

func TestLikelihood_CurvatureNegatesInformation(t *testing.T) {
	lik := NewLikelihood([]Response{
		{A: 1.0, B: -2.0, Correct: true},
		{A: 1.2, B: 0.0, Correct: false},
	})

	for _, theta := range []float64{-3, -0.85, 0, 1.5} {
		info := lik.Information(theta)
		want := Information(1.0, -2.0, theta) + Information(1.2, 0.0, theta)
		if math.Abs(info-want) > 1e-15 {
			t.Errorf("Information(%v) = %v, want %v", theta, info, want)
		}
		if c := lik.Curvature(theta); c != -info {
			t.Errorf("Curvature(%v) = %v, want %v", theta, c, -info)
		}
		score, curv := lik.Derivatives(theta)
		if score != lik.Score(theta) || curv != lik.Curvature(theta) {
			t.Errorf("Derivatives(%v) = (%v, %v), want Score and Curvature", theta, score, curv)
		}
	}
}
