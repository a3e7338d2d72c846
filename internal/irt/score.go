package irt

import "math"

// The displayed score is a linear map of θ ∈ [-3, 3] onto [200, 1000].
const (
	ScoreMin = 200
	ScoreMax = 1000

	scoreThetaMin = -3.0
	scoreThetaMax = 3.0
)

// ProficiencyToScore converts an ability estimate into a rounded display
// score. Abilities outside [-3, 3] clamp to the ends of the scale.
func ProficiencyToScore(theta float64) int {
	if math.IsNaN(theta) {
		theta = 0
	}
	theta = clamp(theta, scoreThetaMin, scoreThetaMax)
	span := float64(ScoreMax - ScoreMin)
	score := ScoreMin + (theta-scoreThetaMin)/(scoreThetaMax-scoreThetaMin)*span
	return int(math.Round(score))
}

// ScoreToProficiency is the inverse linear map. Because ProficiencyToScore
// rounds, the round trip is approximate.
func ScoreToProficiency(score float64) float64 {
	if math.IsNaN(score) {
		score = (ScoreMin + ScoreMax) / 2
	}
	score = clamp(score, ScoreMin, ScoreMax)
	span := float64(ScoreMax - ScoreMin)
	return scoreThetaMin + (score-ScoreMin)/span*(scoreThetaMax-scoreThetaMin)
}
