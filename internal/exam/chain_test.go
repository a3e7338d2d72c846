package exam

import (
	"context"
	"errors"
	"testing"

	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/models"
)

func TestChain_OversamplesRemainingDeficit(t *testing.T) {
	primary := &fakeSource{name: "primary", items: bank("p", 1)}
	secondary := &fakeSource{name: "secondary", items: bank("s", 10)}
	chain := NewChain(logger.Nop(), primary, secondary)

	items, err := chain.FetchByDifficulty(context.Background(), ItemQuery{
		Areas:      []models.Area{models.AreaMathematics},
		Difficulty: models.DifficultyHard,
		Limit:      4,
	}, newRand("seed"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(items))
	}
	if len(primary.limits) != 1 || primary.limits[0] != 8 {
		t.Errorf("primary asked for %v, want [8]", primary.limits)
	}
	if len(secondary.limits) != 1 || secondary.limits[0] != 6 {
		t.Errorf("secondary asked for %v, want [6]", secondary.limits)
	}
	if items[0].Source != "primary" {
		t.Errorf("first item source = %s, want primary", items[0].Source)
	}
}

func TestChain_ExcludesAndDeduplicates(t *testing.T) {
	dup := models.Item{ID: "dup", Area: models.AreaLanguages, Difficulty: models.DifficultyEasy}
	primary := &fakeSource{name: "primary", items: []models.Item{
		dup, dup, {ID: "taken", Area: models.AreaLanguages, Difficulty: models.DifficultyEasy},
	}}
	chain := NewChain(logger.Nop(), primary)

	items, err := chain.FetchByDifficulty(context.Background(), ItemQuery{
		Areas:      []models.Area{models.AreaLanguages},
		Difficulty: models.DifficultyEasy,
		Limit:      3,
		Exclude:    []string{"taken"},
	}, newRand(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	assertUniqueIDs(t, items)
	realCount := 0
	for _, item := range items {
		if item.ID == "taken" {
			t.Error("excluded item returned")
		}
		if item.Provenance == models.ProvenanceReal {
			realCount++
		}
	}
	if realCount != 1 {
		t.Errorf("real items = %d, want 1", realCount)
	}
}

func TestChain_FetchByYearSkipsFailingTier(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("timeout")}
	secondary := &fakeSource{name: "local", items: booklet(2019, 8)}
	chain := NewChain(logger.Nop(), primary, secondary)

	items, err := chain.FetchByYear(context.Background(), YearQuery{Year: 2019}, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 8 {
		t.Fatalf("len(items) = %d, want 8", len(items))
	}
	for i, item := range items {
		if item.Source != "local" || item.Provenance != models.ProvenanceReal {
			t.Errorf("items[%d] = %s/%s, want real/local", i, item.Provenance, item.Source)
		}
		if item.BookletPosition != i+1 {
			t.Errorf("items[%d].booklet_position = %d", i, item.BookletPosition)
		}
	}
}

func TestChain_FetchByYearCompletesShortBooklet(t *testing.T) {
	primary := &fakeSource{name: "primary", items: booklet(2020, 10)}
	chain := NewChain(logger.Nop(), primary)

	items, err := chain.FetchByYear(context.Background(), YearQuery{Year: 2020, Limit: 20}, 180)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 20 {
		t.Fatalf("len(items) = %d, want 20", len(items))
	}
	for i, item := range items {
		if item.BookletPosition != i+1 {
			t.Errorf("items[%d].booklet_position = %d, want %d", i, item.BookletPosition, i+1)
		}
		wantProvenance := models.ProvenanceReal
		if i >= 10 {
			wantProvenance = models.ProvenanceSynthetic
		}
		if item.Provenance != wantProvenance {
			t.Errorf("items[%d] provenance = %s, want %s", i, item.Provenance, wantProvenance)
		}
	}
	assertUniqueIDs(t, items)
}

func TestChain_ZeroLimit(t *testing.T) {
	chain := NewChain(logger.Nop())
	items, err := chain.FetchByDifficulty(context.Background(), ItemQuery{Limit: 0}, newRand(""))
	if err != nil || len(items) != 0 {
		t.Errorf("FetchByDifficulty(limit 0) = %v, %v; want empty, nil", items, err)
	}
}

func TestSyntheticSource(t *testing.T) {
	src := NewSyntheticSource()
	q := ItemQuery{
		Areas:      []models.Area{models.AreaNaturalSciences, models.AreaHumanSciences},
		Difficulty: models.DifficultyHard,
		Limit:      5,
	}

	first, _ := src.FetchByDifficulty(context.Background(), q)
	if len(first) != 5 {
		t.Fatalf("len(items) = %d, want 5", len(first))
	}
	for _, item := range first {
		if item.Provenance != models.ProvenanceSynthetic || item.Difficulty != models.DifficultyHard {
			t.Errorf("item %+v not a hard synthetic placeholder", item)
		}
		if item.IRT == nil || !item.IRT.Valid() {
			t.Errorf("item %s has invalid parameters", item.ID)
		}
	}

	again, _ := src.FetchByDifficulty(context.Background(), q)
	for i := range first {
		if first[i].ID != again[i].ID {
			t.Errorf("synthetic ids not stable: %s vs %s", first[i].ID, again[i].ID)
		}
	}

	q.Exclude = []string{first[0].ID, first[1].ID}
	excluded, _ := src.FetchByDifficulty(context.Background(), q)
	if len(excluded) != 5 {
		t.Fatalf("len(items) with exclusions = %d, want 5", len(excluded))
	}
	for _, item := range excluded {
		if item.ID == first[0].ID || item.ID == first[1].ID {
			t.Errorf("excluded id %s returned", item.ID)
		}
	}
}
