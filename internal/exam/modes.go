package exam

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/enem-prep/backend/internal/models"
)

const (
	quickNumQuestions = 15
	quickTimeLimit    = 30

	// Historical ENEM booklets carry 45 items per area.
	officialItemsPerArea = 45
)

var quickDistribution = models.DifficultyDistribution{Easy: 5, Medium: 7, Hard: 3}

// strategy resolves a config into items plus the config actually applied.
type strategy func(ctx context.Context, chain *Chain, cfg models.ExamConfig, rng *rand.Rand) ([]models.Item, models.ExamConfig, error)

// ── Registry ───────────────────────────────────────────

var strategies = map[models.ExamMode]strategy{
	models.ModeQuick:    quickExam,
	models.ModeCustom:   customExam,
	models.ModeOfficial: officialExam,
	models.ModeAdaptive: adaptiveExam,
}

// SupportedModes lists the registered modes in a stable order.
func SupportedModes() []models.ExamMode {
	return []models.ExamMode{models.ModeQuick, models.ModeCustom, models.ModeOfficial, models.ModeAdaptive}
}

// TimeLimitFor is the booklet time table: up to 15 items get 30 minutes,
// up to 30 get 60, up to 45 get 90, anything longer 150.
func TimeLimitFor(numItems int) int {
	switch {
	case numItems <= 15:
		return 30
	case numItems <= 30:
		return 60
	case numItems <= 45:
		return 90
	default:
		return 150
	}
}

// ── Strategies ─────────────────────────────────────────

func quickExam(ctx context.Context, chain *Chain, cfg models.ExamConfig, rng *rand.Rand) ([]models.Item, models.ExamConfig, error) {
	eff := cfg
	if eff.NumQuestions == 0 {
		eff.NumQuestions = quickNumQuestions
		if eff.Distribution != nil {
			eff.NumQuestions = eff.Distribution.Total()
		}
	}
	if eff.TimeLimit == 0 {
		eff.TimeLimit = quickTimeLimit
	}
	if eff.Distribution == nil {
		d := quickDistribution
		if eff.NumQuestions != quickNumQuestions {
			d = splitDistribution(eff.NumQuestions, 1.0/3, 0.2)
		}
		eff.Distribution = &d
	}
	if err := applyAreaDefaults(&eff); err != nil {
		return nil, eff, err
	}
	if err := validateCounts(eff); err != nil {
		return nil, eff, err
	}

	items, err := selectItemsByDistribution(ctx, chain, eff.Areas, *eff.Distribution, rng)
	if err != nil {
		return nil, eff, err
	}
	shuffle(rng, items)
	return items, eff, nil
}

func customExam(ctx context.Context, chain *Chain, cfg models.ExamConfig, rng *rand.Rand) ([]models.Item, models.ExamConfig, error) {
	eff := cfg
	if eff.NumQuestions == 0 {
		eff.NumQuestions = quickNumQuestions
		if eff.Distribution != nil {
			eff.NumQuestions = eff.Distribution.Total()
		}
	}
	if eff.Distribution == nil {
		d := splitDistribution(eff.NumQuestions, 0.3, 0.2)
		eff.Distribution = &d
	}
	if eff.TimeLimit == 0 {
		eff.TimeLimit = TimeLimitFor(eff.NumQuestions)
	}
	if err := applyAreaDefaults(&eff); err != nil {
		return nil, eff, err
	}
	if err := validateCounts(eff); err != nil {
		return nil, eff, err
	}

	items, err := selectItemsByDistribution(ctx, chain, eff.Areas, *eff.Distribution, rng)
	if err != nil {
		return nil, eff, err
	}
	shuffle(rng, items)
	return items, eff, nil
}

// officialExam serves a historical booklet in its printed order. A request
// may not exceed 45 items per area; a booklet shorter than the request is
// completed with synthetic items after its last position.
func officialExam(ctx context.Context, chain *Chain, cfg models.ExamConfig, _ *rand.Rand) ([]models.Item, models.ExamConfig, error) {
	eff := cfg
	if eff.Year <= 0 {
		return nil, eff, &ValidationError{Field: "year", Reason: "is required for OFFICIAL exams"}
	}
	if eff.NumQuestions < 0 {
		return nil, eff, &ValidationError{Field: "num_questions", Reason: "must not be negative"}
	}
	if err := applyAreaDefaults(&eff); err != nil {
		return nil, eff, err
	}

	maxItems := officialItemsPerArea * len(eff.Areas)
	if eff.NumQuestions > maxItems {
		return nil, eff, &ValidationError{
			Field:  "num_questions",
			Reason: fmt.Sprintf("exceeds the %d items of a %d-area booklet", maxItems, len(eff.Areas)),
		}
	}

	fallbackCount := eff.NumQuestions
	if fallbackCount == 0 {
		fallbackCount = maxItems
	}
	items, err := chain.FetchByYear(ctx, YearQuery{Year: eff.Year, Areas: eff.Areas, Limit: eff.NumQuestions}, fallbackCount)
	if err != nil {
		return nil, eff, err
	}

	eff.NumQuestions = len(items)
	eff.TimeLimit = TimeLimitFor(len(items))
	eff.Distribution = nil
	eff.RandomSeed = ""
	return items, eff, nil
}

// adaptiveExam draws three near-equal blocks, easy then medium then hard,
// concatenated in that order.
func adaptiveExam(ctx context.Context, chain *Chain, cfg models.ExamConfig, rng *rand.Rand) ([]models.Item, models.ExamConfig, error) {
	eff := cfg
	if eff.NumQuestions == 0 {
		eff.NumQuestions = quickNumQuestions
	}
	if eff.NumQuestions < 0 {
		return nil, eff, &ValidationError{Field: "num_questions", Reason: "must not be negative"}
	}
	if err := applyAreaDefaults(&eff); err != nil {
		return nil, eff, err
	}
	blocks := splitBlocks(eff.NumQuestions)
	eff.Distribution = &blocks
	if eff.TimeLimit == 0 {
		eff.TimeLimit = TimeLimitFor(eff.NumQuestions)
	}

	items, err := selectItemsByDistribution(ctx, chain, eff.Areas, blocks, rng)
	if err != nil {
		return nil, eff, err
	}
	return items, eff, nil
}

// ── Validation ─────────────────────────────────────────

func applyAreaDefaults(cfg *models.ExamConfig) error {
	if len(cfg.Areas) == 0 {
		cfg.Areas = append([]models.Area(nil), models.AllAreas...)
		return nil
	}
	seen := make(map[models.Area]bool, len(cfg.Areas))
	areas := make([]models.Area, 0, len(cfg.Areas))
	for _, a := range cfg.Areas {
		if !models.ValidAreas[a] {
			return &ValidationError{Field: "areas", Reason: fmt.Sprintf("contains unknown area %q", a)}
		}
		if !seen[a] {
			seen[a] = true
			areas = append(areas, a)
		}
	}
	cfg.Areas = areas
	return nil
}

func validateCounts(cfg models.ExamConfig) error {
	if cfg.NumQuestions < 0 {
		return &ValidationError{Field: "num_questions", Reason: "must not be negative"}
	}
	if cfg.TimeLimit < 0 {
		return &ValidationError{Field: "time_limit_minutes", Reason: "must not be negative"}
	}
	d := cfg.Distribution
	if d.Easy < 0 || d.Medium < 0 || d.Hard < 0 {
		return &ValidationError{Field: "difficulty_distribution", Reason: "counts must not be negative"}
	}
	if d.Total() != cfg.NumQuestions {
		return &ValidationError{
			Field:  "difficulty_distribution",
			Reason: fmt.Sprintf("sums to %d, want num_questions %d", d.Total(), cfg.NumQuestions),
		}
	}
	return nil
}
