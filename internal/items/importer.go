package items

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/enem-prep/backend/internal/models"
)

// DecodeItems reads a JSON array of items for bulk import. Items without a
// difficulty label get one derived from their calibrated b; anything that
// cannot be stored is rejected with the offending index.
func DecodeItems(r io.Reader) ([]models.Item, error) {
	var items []models.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: decode items: %v", ErrInvalidInput, err)
	}

	seen := make(map[string]bool, len(items))
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			return nil, fmt.Errorf("%w: items[%d] has no id", ErrInvalidInput, i)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: items[%d] repeats id %s", ErrInvalidInput, i, item.ID)
		}
		seen[item.ID] = true

		if !models.ValidAreas[item.Area] {
			return nil, fmt.Errorf("%w: item %s has unknown area %q", ErrInvalidInput, item.ID, item.Area)
		}
		if item.IRT != nil && !item.IRT.Valid() {
			return nil, fmt.Errorf("%w: item %s has invalid irt parameters", ErrInvalidInput, item.ID)
		}
		if item.Difficulty == "" && item.IRT != nil {
			item.Difficulty = models.DifficultyForB(item.IRT.B)
		}
		if !models.ValidDifficulties[item.Difficulty] {
			return nil, fmt.Errorf("%w: item %s has unknown difficulty %q", ErrInvalidInput, item.ID, item.Difficulty)
		}
		if item.BookletPosition < 0 || item.Year < 0 {
			return nil, fmt.Errorf("%w: item %s has a negative year or booklet position", ErrInvalidInput, item.ID)
		}
	}
	return items, nil
}
