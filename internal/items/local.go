package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/models"
)

const localSourceName = "local"

// LocalStore is the SQLite item bank shipped with the service. It is the
// secondary tier of the exam chain and the bank used by irtctl.
type LocalStore struct {
	db *sql.DB
}

func NewLocalStore(db *sql.DB) *LocalStore {
	return &LocalStore{db: db}
}

func (s *LocalStore) Name() string {
	return localSourceName
}

func (s *LocalStore) FetchByDifficulty(ctx context.Context, q exam.ItemQuery) ([]models.Item, error) {
	areas := areaStrings(q.Areas)
	args := make([]any, 0, len(areas)+len(q.Exclude)+2)
	for _, a := range areas {
		args = append(args, a)
	}
	args = append(args, string(q.Difficulty))

	query := `SELECT ` + itemColumns + ` FROM items WHERE area IN (` + placeholders(len(areas)) + `) AND difficulty = ?`
	if len(q.Exclude) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(q.Exclude)) + `)`
		for _, id := range q.Exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY id`
	if q.Salt == "" {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("local fetch by difficulty: %w", err)
	}
	items, err := scanLocalItems(rows)
	if err != nil || q.Salt == "" {
		return items, err
	}

	// SQLite has no md5; the bank is small enough to order the cell here.
	saltedOrder(items, q.Salt)
	if len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

func (s *LocalStore) FetchByYear(ctx context.Context, q exam.YearQuery) ([]models.Item, error) {
	areas := areaStrings(q.Areas)
	args := make([]any, 0, len(areas)+2)
	args = append(args, q.Year)
	for _, a := range areas {
		args = append(args, a)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE year = ? AND area IN (` + placeholders(len(areas)) + `)
		ORDER BY booklet_position, id`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("local fetch booklet %d: %w", q.Year, err)
	}
	return scanLocalItems(rows)
}

// UpsertItems inserts or replaces items and returns how many were written.
func (s *LocalStore) UpsertItems(ctx context.Context, items []models.Item) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for _, item := range items {
		competencies, err := json.Marshal(nonNil(item.Competencies))
		if err != nil {
			return 0, fmt.Errorf("encode competencies: %w", err)
		}
		a, b, c := nullParams(item.IRT)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (`+itemColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   area = excluded.area, difficulty = excluded.difficulty,
			   irt_a = excluded.irt_a, irt_b = excluded.irt_b, irt_c = excluded.irt_c,
			   topic = excluded.topic, competencies = excluded.competencies,
			   year = excluded.year, booklet_position = excluded.booklet_position,
			   content_ref = excluded.content_ref`,
			item.ID, string(item.Area), string(item.Difficulty), a, b, c, item.Topic,
			string(competencies), nullInt(item.Year), nullInt(item.BookletPosition), item.ContentRef,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert item %s: %w", item.ID, err)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

func (s *LocalStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("local get item: %w", err)
	}
	items, err := scanLocalItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &items[0], nil
}

// UpdateParameters writes calibrated parameters onto an existing item.
func (s *LocalStore) UpdateParameters(ctx context.Context, id string, p irt.Parameters) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET irt_a = ?, irt_b = ?, irt_c = ? WHERE id = ?`,
		p.A, p.B, p.C, id,
	)
	if err != nil {
		return fmt.Errorf("local update parameters: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *LocalStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// AllItems returns the whole bank ordered by id.
func (s *LocalStore) AllItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return scanLocalItems(rows)
}

func scanLocalItems(rows *sql.Rows) ([]models.Item, error) {
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var (
			item           models.Item
			area, level    string
			a, b, c        sql.NullFloat64
			competencies   string
			year, position sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &area, &level, &a, &b, &c,
			&item.Topic, &competencies, &year, &position, &item.ContentRef); err != nil {
			return nil, fmt.Errorf("scan local item: %w", err)
		}
		if competencies != "" {
			if err := json.Unmarshal([]byte(competencies), &item.Competencies); err != nil {
				return nil, fmt.Errorf("decode competencies of %s: %w", item.ID, err)
			}
		}
		item.Area = models.Area(area)
		item.Difficulty = models.Difficulty(level)
		item.IRT = paramsFromNull(a, b, c)
		item.Year = int(year.Int64)
		item.BookletPosition = int(position.Int64)
		item.Provenance = models.ProvenanceReal
		item.Source = localSourceName
		items = append(items, item)
	}
	return items, rows.Err()
}

// saltedOrder sorts items by the FNV-1a hash of id and salt, ties by id.
func saltedOrder(items []models.Item, salt string) {
	keys := make(map[string]uint64, len(items))
	for _, item := range items {
		h := fnv.New64a()
		h.Write([]byte(item.ID))
		h.Write([]byte(salt))
		keys[item.ID] = h.Sum64()
	}
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := keys[items[i].ID], keys[items[j].ID]
		if ki != kj {
			return ki < kj
		}
		return items[i].ID < items[j].ID
	})
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
