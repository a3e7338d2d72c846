package irt

// adaptiveStep is the placeholder ability drift applied after each pick. No
// responses exist while a sequence is being planned, so the estimate wobbles
// by ±adaptiveStep instead of being re-estimated.
const adaptiveStep = 0.1

// PoolItem is a candidate for adaptive selection.
type PoolItem struct {
	ID     string     `json:"id"`
	Params Parameters `json:"params"`
}

// GenerateAdaptiveSequence greedily picks, without replacement, the pool
// item with the most information at the current ability, up to maxItems.
// The result is shorter than maxItems when the pool runs out.
func GenerateAdaptiveSequence(theta0 float64, pool []PoolItem, maxItems int) []string {
	if maxItems <= 0 || len(pool) == 0 {
		return []string{}
	}

	used := make([]bool, len(pool))
	seen := make(map[string]bool, len(pool))
	sequence := make([]string, 0, min(maxItems, len(pool)))
	theta := clamp(theta0, ThetaMin, ThetaMax)

	for step := 0; step < maxItems; step++ {
		best := -1
		bestInfo := -1.0
		for i, item := range pool {
			if used[i] || seen[item.ID] {
				continue
			}
			if info := ItemInformation(theta, item.Params); info > bestInfo {
				best, bestInfo = i, info
			}
		}
		if best < 0 {
			break
		}

		used[best] = true
		seen[pool[best].ID] = true
		sequence = append(sequence, pool[best].ID)

		delta := adaptiveStep
		if step%2 == 1 {
			delta = -adaptiveStep
		}
		theta = clamp(theta+delta, ThetaMin, ThetaMax)
	}
	return sequence
}
