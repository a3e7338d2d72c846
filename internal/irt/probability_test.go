package irt

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

var sampleParams = []Parameters{
	{A: 1.0, B: 0.0, C: 0.2},
	{A: 0.3, B: -2.0, C: 0.0},
	{A: 2.5, B: 1.5, C: 0.25},
	{A: 1.2, B: -1.0, C: 0.05},
	{A: 0.8, B: 3.0, C: 0.35},
}

func TestItemProbability_Range(t *testing.T) {
	for _, params := range sampleParams {
		for theta := -6.0; theta <= 6.0; theta += 0.25 {
			p := ItemProbability(theta, params)
			if p <= 0 || p >= 1 {
				t.Errorf("ItemProbability(%.2f, %+v) = %f, want in (0,1)", theta, params, p)
			}
		}
	}
}

func TestItemProbability_IncreasingInTheta(t *testing.T) {
	for _, params := range sampleParams {
		prev := ItemProbability(-4, params)
		for theta := -3.9; theta <= 4.0; theta += 0.1 {
			p := ItemProbability(theta, params)
			if p < prev {
				t.Errorf("ItemProbability not monotonic for %+v: P(%.2f)=%f < %f", params, theta, p, prev)
			}
			prev = p
		}
		if ItemProbability(1, params) <= ItemProbability(-1, params) {
			t.Errorf("ItemProbability(1) <= ItemProbability(-1) for %+v", params)
		}
	}
}

func TestItemProbability_KnownValues(t *testing.T) {
	// At θ = b the logistic term is 1/2, so P = c + (1-c)/2.
	got := ItemProbability(0, Parameters{A: 1, B: 0, C: 0.2})
	if !almostEqual(got, 0.6, 1e-9) {
		t.Errorf("ItemProbability(0, b=0, c=0.2) = %f, want 0.6", got)
	}

	got = ItemProbability(1, Parameters{A: 1, B: 0, C: 0})
	want := 1 / (1 + math.Exp(-1))
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("ItemProbability(1, a=1, b=0, c=0) = %f, want %f", got, want)
	}
}

func TestItemProbability_ExtremeInputsAreClamped(t *testing.T) {
	params := Parameters{A: 3, B: 0, C: 0}

	high := ItemProbability(1e9, params)
	if high != maxProbability {
		t.Errorf("ItemProbability(1e9) = %v, want %v", high, maxProbability)
	}
	low := ItemProbability(-1e9, params)
	if low != minProbability {
		t.Errorf("ItemProbability(-1e9) = %v, want %v", low, minProbability)
	}
	if math.IsNaN(ItemProbability(math.Inf(1), params)) {
		t.Error("ItemProbability(+Inf) is NaN")
	}
}

func TestItemInformation_NonNegative(t *testing.T) {
	for _, params := range sampleParams {
		for theta := -8.0; theta <= 8.0; theta += 0.5 {
			info := ItemInformation(theta, params)
			if info < 0 || math.IsNaN(info) {
				t.Errorf("ItemInformation(%.1f, %+v) = %f, want >= 0", theta, params, info)
			}
		}
	}
}

func TestItemInformation_VanishesAtExtremes(t *testing.T) {
	for _, params := range sampleParams {
		peak := 0.0
		for theta := -4.0; theta <= 4.0; theta += 0.1 {
			peak = math.Max(peak, ItemInformation(theta, params))
		}
		for _, theta := range []float64{-60, 60} {
			info := ItemInformation(theta, params)
			if info > 1e-3 {
				t.Errorf("ItemInformation(%.0f, %+v) = %g, want ~0", theta, params, info)
			}
			if peak > 0 && info >= peak {
				t.Errorf("ItemInformation(%.0f) = %g not below peak %g", theta, info, peak)
			}
		}
	}
}

func TestItemInformation_GuessingNearOne(t *testing.T) {
	// (1-c)² underflows towards zero; the epsilon guard keeps the result finite.
	params := Parameters{A: 1, B: 0, C: 0.9999999999}
	info := ItemInformation(0, params)
	if math.IsNaN(info) || math.IsInf(info, 0) {
		t.Errorf("ItemInformation with c~1 = %v, want finite", info)
	}
}

func TestItemInformation_HigherDiscriminationMoreInformative(t *testing.T) {
	low := ItemInformation(0, Parameters{A: 0.5, B: 0, C: 0.2})
	high := ItemInformation(0, Parameters{A: 2.0, B: 0, C: 0.2})
	if high <= low {
		t.Errorf("information for a=2 (%f) should exceed a=0.5 (%f)", high, low)
	}
}

func TestParametersValid(t *testing.T) {
	tests := []struct {
		params Parameters
		want   bool
	}{
		{Parameters{A: 1, B: 0, C: 0.2}, true},
		{Parameters{A: 0.01, B: -3, C: 0}, true},
		{Parameters{A: 0, B: 0, C: 0.2}, false},
		{Parameters{A: -1, B: 0, C: 0.2}, false},
		{Parameters{A: 1, B: 0, C: 1}, false},
		{Parameters{A: 1, B: 0, C: -0.1}, false},
		{Parameters{A: math.NaN(), B: 0, C: 0.2}, false},
	}
	for _, tt := range tests {
		if got := tt.params.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.params, got, tt.want)
		}
	}
}
