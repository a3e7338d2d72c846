package items

import (
	"errors"
	"strings"
	"testing"

	"github.com/enem-prep/backend/internal/models"
)

func TestDecodeItems(t *testing.T) {
	input := `[
		{"id":"a","area":"MT","difficulty":"easy"},
		{"id":"b","area":"CN","irt":{"a":1.2,"b":1.4,"c":0.2}},
		{"id":"c","area":"LC","irt":{"a":0.9,"b":0.1,"c":0.15},"year":2021,"booklet_position":3}
	]`
	items, err := DecodeItems(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[1].Difficulty != models.DifficultyHard {
		t.Errorf("derived difficulty = %s, want hard", items[1].Difficulty)
	}
	if items[2].Difficulty != models.DifficultyMedium {
		t.Errorf("derived difficulty = %s, want medium", items[2].Difficulty)
	}
}

func TestDecodeItems_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `[{`},
		{"missing id", `[{"area":"MT","difficulty":"easy"}]`},
		{"duplicate id", `[{"id":"a","area":"MT","difficulty":"easy"},{"id":"a","area":"MT","difficulty":"hard"}]`},
		{"unknown area", `[{"id":"a","area":"XX","difficulty":"easy"}]`},
		{"no difficulty or params", `[{"id":"a","area":"MT"}]`},
		{"invalid params", `[{"id":"a","area":"MT","irt":{"a":-1,"b":0,"c":0.2}}]`},
		{"negative position", `[{"id":"a","area":"MT","difficulty":"easy","booklet_position":-2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeItems(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
