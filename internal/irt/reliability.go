package irt

import "gonum.org/v1/gonum/stat/distuv"

const (
	quadraturePoints = 41
	quadratureSpan   = 4.0
)

// TestInformation sums item information at theta.
func TestInformation(theta float64, items []Parameters) float64 {
	total := 0.0
	for _, p := range items {
		total += ItemInformation(theta, p)
	}
	return total
}

// TestReliability returns a Cronbach's-alpha-style coefficient for the items
// behind a response set:
//
//	α = k/(k-1) * (1 - Σ pᵢ(1-pᵢ) / var(X))
//
// Item variances are taken at the mean ability, which is the maximum
// likelihood estimate for the responses. var(X) is the model-implied variance
// of the number-correct score for abilities distributed N(mean, 1). The
// result is clamped to [0, 1]; fewer than two items yield 0.
func TestReliability(responses []ResponsePattern) float64 {
	k := len(responses)
	if k < 2 {
		return 0
	}

	mean := 0.0
	if est, err := EstimateProficiency(responses); err == nil {
		mean = est.Theta
	}

	itemVariance := 0.0
	for _, r := range responses {
		p := ItemProbability(mean, r.Params)
		itemVariance += p * (1 - p)
	}

	totalVariance := scoreVariance(mean, responses)
	if totalVariance <= denominatorEpsilon {
		return 0
	}

	alpha := float64(k) / float64(k-1) * (1 - itemVariance/totalVariance)
	return clamp(alpha, 0, 1)
}

// scoreVariance integrates Var(X) = E[Var(X|θ)] + Var(E[X|θ]) over a normal
// ability distribution centred on mean.
func scoreVariance(mean float64, responses []ResponsePattern) float64 {
	prior := distuv.Normal{Mu: mean, Sigma: 1}
	step := 2 * quadratureSpan / float64(quadraturePoints-1)

	var weightSum, firstMoment, secondMoment float64
	for j := 0; j < quadraturePoints; j++ {
		theta := mean - quadratureSpan + float64(j)*step
		w := prior.Prob(theta)

		expected, conditional := 0.0, 0.0
		for _, r := range responses {
			p := ItemProbability(theta, r.Params)
			expected += p
			conditional += p * (1 - p)
		}

		weightSum += w
		firstMoment += w * expected
		secondMoment += w * (conditional + expected*expected)
	}
	if weightSum == 0 {
		return 0
	}
	firstMoment /= weightSum
	secondMoment /= weightSum
	return secondMoment - firstMoment*firstMoment
}
