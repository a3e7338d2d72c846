package models

import "github.com/enem-prep/backend/internal/irt"

// Area is one of the four ENEM knowledge areas.
type Area string

const (
	AreaLanguages       Area = "LC"
	AreaHumanSciences   Area = "CH"
	AreaNaturalSciences Area = "CN"
	AreaMathematics     Area = "MT"
)

// AllAreas is the canonical area order used for defaults and round-robin
// splits.
var AllAreas = []Area{AreaLanguages, AreaHumanSciences, AreaNaturalSciences, AreaMathematics}

var ValidAreas = map[Area]bool{
	AreaLanguages:       true,
	AreaHumanSciences:   true,
	AreaNaturalSciences: true,
	AreaMathematics:     true,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in block order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// NominalParameters maps a difficulty label onto 3PL parameters for items
// that have not been calibrated yet.
func (d Difficulty) NominalParameters() irt.Parameters {
	p := irt.DefaultParameters()
	switch d {
	case DifficultyEasy:
		p.B = -1
	case DifficultyHard:
		p.B = 1
	}
	return p
}

// DifficultyForB buckets a calibrated difficulty back into a label.
func DifficultyForB(b float64) Difficulty {
	switch {
	case b < -0.5:
		return DifficultyEasy
	case b > 0.5:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSynthetic Provenance = "synthetic"
)

// ── Core Structs ───────────────────────────────────────

type Item struct {
	ID              string          `json:"id"`
	Area            Area            `json:"area"`
	Difficulty      Difficulty      `json:"difficulty"`
	IRT             *irt.Parameters `json:"irt,omitempty"`
	Topic           string          `json:"topic,omitempty"`
	Competencies    []string        `json:"competencies,omitempty"`
	Year            int             `json:"year,omitempty"`
	BookletPosition int             `json:"booklet_position,omitempty"`
	ContentRef      string          `json:"content_ref,omitempty"`
	Provenance      Provenance      `json:"provenance"`
	Source          string          `json:"source"`
}

// Params returns the calibrated parameters, or the nominal ones for the
// item's difficulty label when it has none.
func (i Item) Params() irt.Parameters {
	if i.IRT != nil && i.IRT.Valid() {
		return *i.IRT
	}
	return i.Difficulty.NominalParameters()
}

// ResponseEvent is one stored answer, kept for later calibration.
type ResponseEvent struct {
	ID          int64    `json:"id"`
	CandidateID int64    `json:"candidate_id"`
	ItemID      string   `json:"item_id"`
	Theta       float64  `json:"theta"`
	Correct     bool     `json:"correct"`
	TimeSpent   *float64 `json:"time_spent_seconds,omitempty"`
}
