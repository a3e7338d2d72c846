package exam

import (
	"context"
	"fmt"

	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/models"
)

// fakeSource serves a fixed in-memory bank in insertion order.
type fakeSource struct {
	name   string
	items  []models.Item
	err    error
	limits []int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchByDifficulty(_ context.Context, q ItemQuery) ([]models.Item, error) {
	f.limits = append(f.limits, q.Limit)
	if f.err != nil {
		return nil, f.err
	}
	exclude := toSet(q.Exclude)
	var out []models.Item
	for _, item := range f.items {
		if item.Difficulty != q.Difficulty || !containsArea(q.Areas, item.Area) || exclude[item.ID] {
			continue
		}
		out = append(out, item)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSource) FetchByYear(_ context.Context, q YearQuery) ([]models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Item
	for _, item := range f.items {
		if item.Year == q.Year && containsArea(q.Areas, item.Area) {
			out = append(out, item)
		}
	}
	return out, nil
}

func containsArea(areas []models.Area, a models.Area) bool {
	if len(areas) == 0 {
		return true
	}
	for _, x := range areas {
		if x == a {
			return true
		}
	}
	return false
}

// bank builds perCell items for every area and difficulty.
func bank(prefix string, perCell int) []models.Item {
	var items []models.Item
	for _, area := range models.AllAreas {
		for _, level := range models.Difficulties {
			for i := 0; i < perCell; i++ {
				items = append(items, models.Item{
					ID:         fmt.Sprintf("%s-%s-%s-%02d", prefix, area, level, i),
					Area:       area,
					Difficulty: level,
				})
			}
		}
	}
	return items
}

// booklet builds a year's booklet stored in reverse printed order.
func booklet(year, size int) []models.Item {
	items := make([]models.Item, 0, size)
	for pos := size; pos >= 1; pos-- {
		items = append(items, models.Item{
			ID:              fmt.Sprintf("enem-%d-%03d", year, pos),
			Area:            models.AllAreas[(pos-1)*len(models.AllAreas)/size],
			Difficulty:      models.DifficultyMedium,
			Year:            year,
			BookletPosition: pos,
		})
	}
	return items
}

func newTestAssembler(sources ...ItemSource) *Assembler {
	return NewAssembler(logger.Nop(), sources...)
}

func assertUniqueIDs(t interface{ Errorf(string, ...any) }, items []models.Item) {
	seen := map[string]bool{}
	for _, item := range items {
		if seen[item.ID] {
			t.Errorf("item %s returned twice", item.ID)
		}
		seen[item.ID] = true
	}
}
