package models

import "time"

type ExamMode string

const (
	ModeQuick    ExamMode = "QUICK"
	ModeCustom   ExamMode = "CUSTOM"
	ModeOfficial ExamMode = "OFFICIAL"
	ModeAdaptive ExamMode = "ADAPTIVE"
)

// DifficultyDistribution holds item counts per difficulty tier.
type DifficultyDistribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

func (d DifficultyDistribution) Total() int {
	return d.Easy + d.Medium + d.Hard
}

// Count returns the count for one tier.
func (d DifficultyDistribution) Count(level Difficulty) int {
	switch level {
	case DifficultyEasy:
		return d.Easy
	case DifficultyMedium:
		return d.Medium
	case DifficultyHard:
		return d.Hard
	}
	return 0
}

type ExamConfig struct {
	Mode         ExamMode                `json:"mode"`
	Areas        []Area                  `json:"areas,omitempty"`
	NumQuestions int                     `json:"num_questions,omitempty"`
	TimeLimit    int                     `json:"time_limit_minutes,omitempty"`
	Distribution *DifficultyDistribution `json:"difficulty_distribution,omitempty"`
	Year         int                     `json:"year,omitempty"`
	RandomSeed   string                  `json:"random_seed,omitempty"`
}

// ExamMetadata describes the items actually returned, after any fallback
// substitution.
type ExamMetadata struct {
	EstimatedDuration   int                `json:"estimated_duration_minutes"`
	DifficultyBreakdown map[Difficulty]int `json:"difficulty_breakdown"`
	AreaBreakdown       map[Area]int       `json:"area_breakdown"`
	SourceBreakdown     map[string]int     `json:"source_breakdown"`
	SyntheticCount      int                `json:"synthetic_count"`
}

type ExamGenerationResult struct {
	Items    []Item       `json:"items"`
	Config   ExamConfig   `json:"config"`
	Metadata ExamMetadata `json:"metadata"`
}

// ExamTemplate is a generated exam persisted for later retrieval.
type ExamTemplate struct {
	ID          string               `json:"id"`
	CandidateID int64                `json:"candidate_id"`
	Exam        ExamGenerationResult `json:"exam"`
	CreatedAt   time.Time            `json:"created_at"`
}
