package irt

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	calibrationTolerance = 0.001
	fitGroups            = 10

	minDiscrimination = 0.1
	maxDiscrimination = 3.0
	minGuessing       = 0.05
	maxGuessing       = 0.5
	varianceSmoothing = 0.1
)

type Quality string

const (
	QualityExcellent  Quality = "excellent"
	QualityGood       Quality = "good"
	QualityAcceptable Quality = "acceptable"
	QualityPoor       Quality = "poor"
)

// Rank orders tiers so callers can ask "at least acceptable".
func (q Quality) Rank() int {
	switch q {
	case QualityExcellent:
		return 3
	case QualityGood:
		return 2
	case QualityAcceptable:
		return 1
	default:
		return 0
	}
}

// CalibrationSample is one observed response with the responder's ability
// held fixed.
type CalibrationSample struct {
	Theta   float64 `json:"theta"`
	Correct bool    `json:"correct"`
}

type FitStatistics struct {
	ChiSquare float64 `json:"chi_square"`
	DF        int     `json:"df"`
	PValue    float64 `json:"p_value"`
	RMSE      float64 `json:"rmse"`
	// Infit is approximated as 1 - RMSE and Outfit mirrors it.
	Infit  float64 `json:"infit"`
	Outfit float64 `json:"outfit"`
}

type CalibrationResult struct {
	ItemID        string        `json:"item_id"`
	Params        Parameters    `json:"params"`
	Fit           FitStatistics `json:"fit"`
	Quality       Quality       `json:"quality"`
	SampleSize    int           `json:"sample_size"`
	LogLikelihood float64       `json:"log_likelihood"`
	Iterations    int           `json:"iterations"`
	Converged     bool          `json:"converged"`
}

func (r CalibrationResult) ConvergenceErr() error {
	if r.Converged {
		return nil
	}
	return fmt.Errorf("calibrate item %s after %d iterations: %w", r.ItemID, r.Iterations, ErrNonConvergence)
}

// CalibrateItem estimates an item's parameters from responses of test-takers
// whose abilities are known. It runs a simplified EM loop: the E-step
// evaluates the current model on every sample, the M-step sets
//
//	b = mean(θ)
//	a = clamp(1/sqrt(var(θ)+0.1), 0.1, 3.0)
//	c = clamp(0.2*accuracy, 0.05, 0.5)
//
// and the loop stops once the summed parameter change drops below 0.001.
// A nil initial starts from DefaultParameters.
func CalibrateItem(itemID string, samples []CalibrationSample, initial *Parameters) (CalibrationResult, error) {
	if len(samples) == 0 {
		return CalibrationResult{}, fmt.Errorf("calibrate item %s: %w", itemID, ErrInsufficientData)
	}

	params := DefaultParameters()
	if initial != nil && initial.Valid() {
		params = *initial
	}

	thetas := make([]float64, len(samples))
	correct := 0
	for i, s := range samples {
		thetas[i] = s.Theta
		if s.Correct {
			correct++
		}
	}
	meanTheta, varTheta := stat.PopMeanVariance(thetas, nil)
	accuracy := float64(correct) / float64(len(samples))

	var (
		iterations int
		converged  bool
		loglik     float64
	)
	for iterations < MaxIterations {
		iterations++

		// E-step
		loglik = logLikelihood(samples, params)

		// M-step
		next := Parameters{
			A: clamp(1/math.Sqrt(varTheta+varianceSmoothing), minDiscrimination, maxDiscrimination),
			B: meanTheta,
			C: clamp(0.2*accuracy, minGuessing, maxGuessing),
		}
		delta := math.Abs(next.A-params.A) + math.Abs(next.B-params.B) + math.Abs(next.C-params.C)
		params = next

		if delta < calibrationTolerance {
			converged = true
			break
		}
	}
	loglik = logLikelihood(samples, params)

	fit := fitStatistics(samples, params)
	return CalibrationResult{
		ItemID:        itemID,
		Params:        params,
		Fit:           fit,
		Quality:       ClassifyQuality(fit.RMSE, fit.Infit),
		SampleSize:    len(samples),
		LogLikelihood: loglik,
		Iterations:    iterations,
		Converged:     converged,
	}, nil
}

// ClassifyQuality maps fit statistics onto a quality tier.
//
//	excellent:  rmse < 0.1 and 0.8 < infit < 1.2
//	good:       rmse < 0.2 and 0.7 < infit < 1.3
//	acceptable: rmse < 0.3 and 0.6 < infit < 1.4
func ClassifyQuality(rmse, infit float64) Quality {
	switch {
	case rmse < 0.1 && infit > 0.8 && infit < 1.2:
		return QualityExcellent
	case rmse < 0.2 && infit > 0.7 && infit < 1.3:
		return QualityGood
	case rmse < 0.3 && infit > 0.6 && infit < 1.4:
		return QualityAcceptable
	default:
		return QualityPoor
	}
}

func logLikelihood(samples []CalibrationSample, params Parameters) float64 {
	ll := 0.0
	for _, s := range samples {
		p := ItemProbability(s.Theta, params)
		if s.Correct {
			ll += math.Log(p)
		} else {
			ll += math.Log(1 - p)
		}
	}
	return ll
}

type abilityGroup struct {
	n        int
	observed float64
	expected float64
}

// fitStatistics compares observed and expected proportions correct across
// ability groups. Samples are sorted by θ and split into up to ten groups
// of near-equal size; with fewer than ten samples every sample is a group.
func fitStatistics(samples []CalibrationSample, params Parameters) FitStatistics {
	groups := groupByAbility(samples, params)

	chi := 0.0
	sq := 0.0
	for _, g := range groups {
		diff := g.observed - g.expected
		variance := g.expected * (1 - g.expected)
		if variance < denominatorEpsilon {
			variance = denominatorEpsilon
		}
		chi += float64(g.n) * diff * diff / variance
		sq += diff * diff
	}

	df := len(groups) - 3
	if df < 1 {
		df = 1
	}
	rmse := math.Sqrt(sq / float64(len(groups)))
	infit := 1 - rmse

	return FitStatistics{
		ChiSquare: chi,
		DF:        df,
		PValue:    distuv.ChiSquared{K: float64(df)}.Survival(chi),
		RMSE:      rmse,
		Infit:     infit,
		Outfit:    infit,
	}
}

func groupByAbility(samples []CalibrationSample, params Parameters) []abilityGroup {
	sorted := make([]CalibrationSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Theta < sorted[j].Theta })

	k := fitGroups
	if len(sorted) < k {
		k = len(sorted)
	}

	groups := make([]abilityGroup, 0, k)
	start := 0
	for g := 0; g < k; g++ {
		end := (g + 1) * len(sorted) / k
		if end <= start {
			continue
		}
		var grp abilityGroup
		for _, s := range sorted[start:end] {
			grp.n++
			if s.Correct {
				grp.observed++
			}
			grp.expected += ItemProbability(s.Theta, params)
		}
		grp.observed /= float64(grp.n)
		grp.expected /= float64(grp.n)
		groups = append(groups, grp)
		start = end
	}
	return groups
}
