package exam

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/enem-prep/backend/internal/models"
)

const syntheticSourceName = "synthetic"

// syntheticNamespace scopes the name-based UUIDs of placeholder items, so the
// same query always yields the same ids.
var syntheticNamespace = uuid.MustParse("6f1c1b8e-3f0a-4a55-9d0e-2b7e5c4a9d10")

// SyntheticSource is the last tier of the chain. It never fails and always
// returns exactly Limit placeholder items, labelled synthetic.
type SyntheticSource struct{}

func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{}
}

func (s *SyntheticSource) Name() string {
	return syntheticSourceName
}

func (s *SyntheticSource) FetchByDifficulty(_ context.Context, q ItemQuery) ([]models.Item, error) {
	if q.Limit <= 0 {
		return []models.Item{}, nil
	}
	areas := q.Areas
	if len(areas) == 0 {
		areas = models.AllAreas
	}
	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	exclude := toSet(q.Exclude)

	items := make([]models.Item, 0, q.Limit)
	for n := 0; len(items) < q.Limit; n++ {
		area := areas[len(items)%len(areas)]
		id := syntheticID(fmt.Sprintf("%s/%s/%d", area, difficulty, n))
		if exclude[id] {
			continue
		}
		items = append(items, placeholder(id, area, difficulty))
	}
	return items, nil
}

// FetchByYear lays out a placeholder booklet: positions 1..Limit with areas
// in contiguous blocks, the way printed booklets group them.
func (s *SyntheticSource) FetchByYear(_ context.Context, q YearQuery) ([]models.Item, error) {
	if q.Limit <= 0 {
		return []models.Item{}, nil
	}
	areas := q.Areas
	if len(areas) == 0 {
		areas = models.AllAreas
	}

	items := make([]models.Item, 0, q.Limit)
	for i := 0; i < q.Limit; i++ {
		area := areas[i*len(areas)/q.Limit]
		id := syntheticID(fmt.Sprintf("booklet/%d/%d", q.Year, i+1))
		item := placeholder(id, area, models.DifficultyMedium)
		item.Year = q.Year
		item.BookletPosition = i + 1
		items = append(items, item)
	}
	return items, nil
}

func syntheticID(name string) string {
	return uuid.NewSHA1(syntheticNamespace, []byte(name)).String()
}

func placeholder(id string, area models.Area, difficulty models.Difficulty) models.Item {
	params := difficulty.NominalParameters()
	return models.Item{
		ID:         id,
		Area:       area,
		Difficulty: difficulty,
		IRT:        &params,
		Topic:      "placeholder",
		ContentRef: "synthetic:" + id,
		Provenance: models.ProvenanceSynthetic,
		Source:     syntheticSourceName,
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
