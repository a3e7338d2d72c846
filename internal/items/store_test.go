package items

import (
	"strings"
	"testing"

	"github.com/lib/pq"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/models"
)

func TestDifficultyQuery(t *testing.T) {
	base := exam.ItemQuery{
		Areas:      []models.Area{models.AreaMathematics},
		Difficulty: models.DifficultyHard,
		Limit:      8,
	}

	tests := []struct {
		name      string
		salt      string
		wantOrder string
		wantArgs  int
	}{
		{"unsalted", "", "ORDER BY id LIMIT $4", 4},
		{"salted", "9f3a", "ORDER BY md5(id || $5), id LIMIT $4", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			q.Salt = tt.salt
			query, args := difficultyQuery(q)

			if !strings.HasSuffix(query, tt.wantOrder) {
				t.Errorf("query = %q, want suffix %q", query, tt.wantOrder)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
			if args[1] != "hard" || args[3] != 8 {
				t.Errorf("difficulty/limit args = %v/%v, want hard/8", args[1], args[3])
			}
			if tt.salt != "" && args[4] != tt.salt {
				t.Errorf("salt arg = %v, want %s", args[4], tt.salt)
			}
		})
	}
}

func TestDifficultyQuery_ExcludeIsNeverNull(t *testing.T) {
	// NOT (id = ANY(NULL)) is NULL and would filter out every row.
	_, args := difficultyQuery(exam.ItemQuery{Difficulty: models.DifficultyEasy, Limit: 1})
	exclude, ok := args[2].(*pq.StringArray)
	if !ok {
		t.Fatalf("exclude arg type = %T, want *pq.StringArray", args[2])
	}
	if *exclude == nil {
		t.Error("exclude array is nil, want empty")
	}

	areas, ok := args[0].(*pq.StringArray)
	if !ok || len(*areas) != len(models.AllAreas) {
		t.Errorf("areas arg = %v, want all %d areas", args[0], len(models.AllAreas))
	}
}
