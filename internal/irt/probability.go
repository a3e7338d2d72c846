package irt

import "math"

const (
	// exponentLimit bounds a(θ-b) before exp to keep it finite.
	exponentLimit = 500.0

	minProbability = 1e-4
	maxProbability = 1 - 1e-4

	denominatorEpsilon = 1e-10
)

// Parameters are the 3PL item parameters: discrimination (A), difficulty (B)
// and pseudo-guessing (C).
type Parameters struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// DefaultParameters is the starting point for calibration and for items
// that carry only a difficulty label.
func DefaultParameters() Parameters {
	return Parameters{A: 1.0, B: 0.0, C: 0.2}
}

// Valid reports whether the parameters satisfy a > 0 and 0 <= c < 1.
func (p Parameters) Valid() bool {
	if math.IsNaN(p.A) || math.IsNaN(p.B) || math.IsNaN(p.C) {
		return false
	}
	return p.A > 0 && p.C >= 0 && p.C < 1
}

// ItemProbability returns the probability that a test-taker with ability
// theta answers an item with the given parameters correctly:
//
//	P = c + (1-c) * exp(a(θ-b)) / (1 + exp(a(θ-b)))
//
// The result is always inside (0, 1).
func ItemProbability(theta float64, params Parameters) float64 {
	x := clamp(params.A*(theta-params.B), -exponentLimit, exponentLimit)
	e := math.Exp(x)
	p := params.C + (1-params.C)*e/(1+e)
	if math.IsNaN(p) {
		return minProbability
	}
	return clamp(p, minProbability, maxProbability)
}

// ItemInformation returns the Fisher information an item contributes at
// theta, I = a² P Q (P-c)² / (1-c)². It is never negative and never NaN.
func ItemInformation(theta float64, params Parameters) float64 {
	p := ItemProbability(theta, params)
	q := 1 - p

	denom := (1 - params.C) * (1 - params.C)
	if denom < denominatorEpsilon {
		denom = denominatorEpsilon
	}

	info := params.A * params.A * p * q * (p - params.C) * (p - params.C) / denom
	if math.IsNaN(info) || info < 0 {
		return 0
	}
	return info
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
