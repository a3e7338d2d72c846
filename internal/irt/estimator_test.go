package irt

import (
	"errors"
	"math"
	"testing"
)

func uniformPattern(n int, correct bool, params Parameters) []ResponsePattern {
	out := make([]ResponsePattern, n)
	for i := range out {
		out[i] = ResponsePattern{ItemID: string(rune('a' + i)), Correct: correct, Params: params}
	}
	return out
}

// symmetricPattern answers the easier half of a difficulty ladder centred on
// zero correctly, so the likelihood peaks exactly at θ = 0.
func symmetricPattern() []ResponsePattern {
	var out []ResponsePattern
	for i := 0; i < 10; i++ {
		b := -2.25 + 0.5*float64(i)
		out = append(out, ResponsePattern{
			ItemID:  string(rune('a' + i)),
			Correct: b < 0,
			Params:  Parameters{A: 1, B: b, C: 0},
		})
	}
	return out
}

func TestEstimateProficiency_Empty(t *testing.T) {
	_, err := EstimateProficiency(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("EstimateProficiency(nil) error = %v, want ErrInsufficientData", err)
	}
	_, err = EstimateProficiency([]ResponsePattern{})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("EstimateProficiency([]) error = %v, want ErrInsufficientData", err)
	}
}

func TestEstimateProficiency_AllCorrectEasyItems(t *testing.T) {
	responses := uniformPattern(10, true, Parameters{A: 1, B: -1, C: 0.2})

	est, err := EstimateProficiency(responses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Theta <= 0 {
		t.Errorf("theta = %f, want > 0", est.Theta)
	}
	if !est.Converged {
		t.Errorf("converged = false after %d iterations, want true", est.Iterations)
	}
	if est.Iterations > MaxIterations {
		t.Errorf("iterations = %d, want <= %d", est.Iterations, MaxIterations)
	}
	if est.Theta > ThetaMax {
		t.Errorf("theta = %f escaped upper bound %f", est.Theta, ThetaMax)
	}
}

func TestEstimateProficiency_AllIncorrect(t *testing.T) {
	responses := uniformPattern(10, false, Parameters{A: 1, B: 1, C: 0.2})

	est, err := EstimateProficiency(responses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Theta >= 0 {
		t.Errorf("theta = %f, want < 0", est.Theta)
	}
	if est.Theta < ThetaMin {
		t.Errorf("theta = %f escaped lower bound %f", est.Theta, ThetaMin)
	}
}

func TestEstimateProficiency_SymmetricPattern(t *testing.T) {
	est, err := EstimateProficiency(symmetricPattern())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(est.Theta, 0, 0.01) {
		t.Errorf("theta = %f, want ~0", est.Theta)
	}
	if !est.Converged {
		t.Error("converged = false, want true")
	}
	if err := est.ConvergenceErr(); err != nil {
		t.Errorf("ConvergenceErr() = %v, want nil", err)
	}
}

func TestEstimateProficiency_ExplicitStart(t *testing.T) {
	from, err := EstimateProficiencyFrom(symmetricPattern(), 1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(from.Theta, 0, 0.05) {
		t.Errorf("theta from 1.5 = %f, want ~0", from.Theta)
	}

	// A starting point outside the bounded range is clamped, not rejected.
	far, err := EstimateProficiencyFrom(symmetricPattern(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if far.Theta > ThetaMax || far.Theta < ThetaMin || math.IsNaN(far.Theta) {
		t.Errorf("theta from 50 = %f, want within bounds", far.Theta)
	}
}

func TestEstimateProficiency_DerivedStatistics(t *testing.T) {
	est, err := EstimateProficiency(symmetricPattern())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if est.StandardError <= 0 {
		t.Fatalf("standard error = %f, want > 0", est.StandardError)
	}
	if !almostEqual(est.ConfidenceInterval.Lower, est.Theta-1.96*est.StandardError, 1e-9) {
		t.Errorf("CI lower = %f, want theta - 1.96*SE", est.ConfidenceInterval.Lower)
	}
	if !almostEqual(est.ConfidenceInterval.Upper, est.Theta+1.96*est.StandardError, 1e-9) {
		t.Errorf("CI upper = %f, want theta + 1.96*SE", est.ConfidenceInterval.Upper)
	}
	wantRel := 1 - 1/(1+est.StandardError*est.StandardError)
	if !almostEqual(est.Reliability, wantRel, 1e-9) {
		t.Errorf("reliability = %f, want %f", est.Reliability, wantRel)
	}
	if est.Reliability < 0 || est.Reliability > 1 {
		t.Errorf("reliability = %f, want in [0,1]", est.Reliability)
	}
}

func TestEstimateProficiency_MoreItemsSmallerError(t *testing.T) {
	short, _ := EstimateProficiency(symmetricPattern())
	long, _ := EstimateProficiency(append(symmetricPattern(), symmetricPattern()...))
	if long.StandardError >= short.StandardError {
		t.Errorf("SE with 20 items (%f) should be below SE with 10 (%f)", long.StandardError, short.StandardError)
	}
}

func TestProficiencyEstimate_ConvergenceErr(t *testing.T) {
	est := ProficiencyEstimate{Theta: 1.2, Iterations: MaxIterations, Converged: false}
	err := est.ConvergenceErr()
	if !errors.Is(err, ErrNonConvergence) {
		t.Errorf("ConvergenceErr() = %v, want ErrNonConvergence", err)
	}
}
