package exam

import (
	"context"
	"fmt"

	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/models"
)

// Assembler builds exams from an ordered list of item sources. It holds no
// per-call state and is safe for concurrent use.
type Assembler struct {
	chain *Chain
	log   *logger.Logger
}

// NewAssembler wires sources in priority order, typically the primary store
// then the local bank. The synthetic tier is always appended last.
func NewAssembler(log *logger.Logger, sources ...ItemSource) *Assembler {
	return &Assembler{
		chain: NewChain(log, sources...),
		log:   log,
	}
}

// GenerateExam resolves cfg through its mode strategy. The returned
// metadata describes the items actually selected.
func (a *Assembler) GenerateExam(ctx context.Context, cfg models.ExamConfig) (*models.ExamGenerationResult, error) {
	run, ok := strategies[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, cfg.Mode)
	}

	items, effective, err := run(ctx, a.chain, cfg, newRand(cfg.RandomSeed))
	if err != nil {
		return nil, fmt.Errorf("generate %s exam: %w", cfg.Mode, err)
	}

	meta := BuildMetadata(items)
	a.log.Info("exam generated",
		"mode", effective.Mode,
		"items", len(items),
		"synthetic", meta.SyntheticCount,
	)
	return &models.ExamGenerationResult{
		Items:    items,
		Config:   effective,
		Metadata: meta,
	}, nil
}

// BuildMetadata summarises a list of items.
func BuildMetadata(items []models.Item) models.ExamMetadata {
	meta := models.ExamMetadata{
		EstimatedDuration:   TimeLimitFor(len(items)),
		DifficultyBreakdown: map[models.Difficulty]int{},
		AreaBreakdown:       map[models.Area]int{},
		SourceBreakdown:     map[string]int{},
	}
	for _, item := range items {
		meta.DifficultyBreakdown[item.Difficulty]++
		meta.AreaBreakdown[item.Area]++
		meta.SourceBreakdown[item.Source]++
		if item.Provenance == models.ProvenanceSynthetic {
			meta.SyntheticCount++
		}
	}
	return meta
}
