package irt

import (
	"fmt"
	"math"
)

const (
	MaxIterations = 50

	// ThetaMin and ThetaMax bound every ability update so all-correct and
	// all-incorrect patterns cannot diverge.
	ThetaMin = -4.0
	ThetaMax = 4.0

	thetaTolerance   = 0.001
	maxNewtonStep    = 1.0
	curvatureEpsilon = 1e-10
	maxStandardError = 10.0
	confidenceZ95    = 1.96
)

// ResponsePattern is one answered item: whether it was correct, how long it
// took and the item's parameters at the time it was served.
type ResponsePattern struct {
	ItemID    string     `json:"item_id"`
	Correct   bool       `json:"correct"`
	TimeSpent float64    `json:"time_spent_seconds,omitempty"`
	Params    Parameters `json:"params"`
}

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ProficiencyEstimate is the outcome of a single scoring request.
type ProficiencyEstimate struct {
	Theta              float64            `json:"theta"`
	StandardError      float64            `json:"standard_error"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	// Reliability is the display heuristic 1 - 1/(1+SE²). It is not the
	// alpha-style coefficient returned by TestReliability.
	Reliability float64 `json:"reliability"`
	Iterations  int     `json:"iterations"`
	Converged   bool    `json:"converged"`
}

// ConvergenceErr returns ErrNonConvergence when the estimator stopped at the
// iteration cap, nil otherwise.
func (e ProficiencyEstimate) ConvergenceErr() error {
	if e.Converged {
		return nil
	}
	return fmt.Errorf("proficiency after %d iterations (theta=%.3f): %w", e.Iterations, e.Theta, ErrNonConvergence)
}

// EstimateProficiency runs Newton-Raphson maximum likelihood estimation of
// theta starting from 0.
func EstimateProficiency(responses []ResponsePattern) (ProficiencyEstimate, error) {
	return EstimateProficiencyFrom(responses, 0)
}

// EstimateProficiencyFrom is EstimateProficiency with an explicit starting
// ability.
func EstimateProficiencyFrom(responses []ResponsePattern, theta0 float64) (ProficiencyEstimate, error) {
	if len(responses) == 0 {
		return ProficiencyEstimate{}, ErrInsufficientData
	}
	if math.IsNaN(theta0) || math.IsInf(theta0, 0) {
		theta0 = 0
	}

	theta := clamp(theta0, ThetaMin, ThetaMax)
	converged := false
	iterations := 0

	// The step is capped and the cap halves each time the gradient changes
	// sign, so an overshooting update cannot bounce between the bounds.
	stepLimit := maxNewtonStep
	prevGradient := 0.0

	for iterations < MaxIterations {
		iterations++

		gradient, curvature := derivatives(theta, responses)
		if math.Abs(curvature) <= curvatureEpsilon {
			// Flat likelihood; another step would be a division by ~0.
			break
		}
		if prevGradient != 0 && gradient != 0 && math.Signbit(gradient) != math.Signbit(prevGradient) {
			stepLimit /= 2
		}
		prevGradient = gradient

		step := clamp(-gradient/curvature, -stepLimit, stepLimit)
		next := clamp(theta+step, ThetaMin, ThetaMax)
		delta := next - theta
		theta = next

		if math.Abs(delta) < thetaTolerance {
			converged = true
			break
		}
	}

	_, curvature := derivatives(theta, responses)
	se := standardError(curvature)

	return ProficiencyEstimate{
		Theta:         theta,
		StandardError: se,
		ConfidenceInterval: ConfidenceInterval{
			Lower: theta - confidenceZ95*se,
			Upper: theta + confidenceZ95*se,
		},
		Reliability: 1 - 1/(1+se*se),
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// derivatives returns the log-likelihood gradient Σ aᵢ(uᵢ-Pᵢ) and the
// curvature -Σ Iᵢ at theta.
func derivatives(theta float64, responses []ResponsePattern) (gradient, curvature float64) {
	for _, r := range responses {
		p := ItemProbability(theta, r.Params)
		u := 0.0
		if r.Correct {
			u = 1.0
		}
		gradient += r.Params.A * (u - p)
		curvature -= ItemInformation(theta, r.Params)
	}
	return gradient, curvature
}

func standardError(curvature float64) float64 {
	if curvature >= -curvatureEpsilon {
		return maxStandardError
	}
	return math.Min(math.Sqrt(-1/curvature), maxStandardError)
}
