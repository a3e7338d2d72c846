package exam

import (
	"context"

	"github.com/enem-prep/backend/internal/models"
)

// ItemQuery asks a source for up to Limit items of one difficulty in the
// given areas, skipping ids in Exclude. Sources order candidates by a hash
// of id and Salt, so different salts reach different parts of the bank and
// equal salts return equal answers. An empty Salt means id order.
type ItemQuery struct {
	Areas      []models.Area
	Difficulty models.Difficulty
	Limit      int
	Exclude    []string
	Salt       string
}

// YearQuery asks for the historical booklet of a year. Limit <= 0 means the
// whole booklet.
type YearQuery struct {
	Year  int
	Areas []models.Area
	Limit int
}

// ItemSource is one tier of the item fallback chain. "No data" is an empty
// slice and a nil error; errors are reserved for genuine faults.
type ItemSource interface {
	Name() string
	FetchByDifficulty(ctx context.Context, q ItemQuery) ([]models.Item, error)
	FetchByYear(ctx context.Context, q YearQuery) ([]models.Item, error)
}
