package exam

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/enem-prep/backend/internal/models"
)

// selectItemsByDistribution draws each difficulty tier in easy, medium, hard
// order. A tier's count is split across areas as evenly as possible; the
// area receiving the remainder rotates from tier to tier so small exams
// still touch every area.
func selectItemsByDistribution(ctx context.Context, chain *Chain, areas []models.Area, dist models.DifficultyDistribution, rng *rand.Rand) ([]models.Item, error) {
	selected := make([]models.Item, 0, dist.Total())
	for tier, level := range models.Difficulties {
		counts := splitAcrossAreas(dist.Count(level), len(areas), tier)
		for i, n := range counts {
			if n == 0 {
				continue
			}
			items, err := chain.FetchByDifficulty(ctx, ItemQuery{
				Areas:      []models.Area{areas[i]},
				Difficulty: level,
				Limit:      n,
				Exclude:    itemIDs(selected),
			}, rng)
			if err != nil {
				return nil, err
			}
			selected = append(selected, items...)
		}
	}
	return selected, nil
}

// splitAcrossAreas divides total into k near-equal parts. The j-th leftover
// unit goes to part (offset+j) mod k.
func splitAcrossAreas(total, k, offset int) []int {
	if k <= 0 {
		return nil
	}
	counts := make([]int, k)
	for i := range counts {
		counts[i] = total / k
	}
	for j := 0; j < total%k; j++ {
		counts[(offset+j)%k]++
	}
	return counts
}

// splitDistribution turns a total into tier counts using easy and hard
// shares; medium takes the rest so the counts always sum to total.
func splitDistribution(total int, easyShare, hardShare float64) models.DifficultyDistribution {
	easy := int(math.Round(float64(total) * easyShare))
	hard := int(math.Round(float64(total) * hardShare))
	if easy+hard > total {
		hard = total - easy
	}
	return models.DifficultyDistribution{Easy: easy, Medium: total - easy - hard, Hard: hard}
}

// splitBlocks splits total into three near-equal blocks, earlier blocks
// taking the remainder.
func splitBlocks(total int) models.DifficultyDistribution {
	base, rem := total/3, total%3
	blocks := [3]int{base, base, base}
	for i := 0; i < rem; i++ {
		blocks[i]++
	}
	return models.DifficultyDistribution{Easy: blocks[0], Medium: blocks[1], Hard: blocks[2]}
}

func itemIDs(items []models.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
