package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

const primarySourceName = "primary"

// Store is the Postgres item bank and the primary tier of the exam chain.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const itemColumns = `id, area, difficulty, irt_a, irt_b, irt_c, topic, competencies, year, booklet_position, content_ref`

// ── Item Source ─────────────────────────────────────────

func (s *Store) Name() string {
	return primarySourceName
}

func (s *Store) FetchByDifficulty(ctx context.Context, q exam.ItemQuery) ([]models.Item, error) {
	query, args := difficultyQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch items by difficulty: %w", err)
	}
	return scanItems(rows)
}

// difficultyQuery orders candidates by md5(id || salt) when the query is
// salted, so oversampling is not pinned to the lowest ids of a tier.
func difficultyQuery(q exam.ItemQuery) (string, []any) {
	query := `SELECT ` + itemColumns + ` FROM items
		 WHERE area = ANY($1) AND difficulty = $2 AND NOT (id = ANY($3))`
	args := []any{pq.Array(areaStrings(q.Areas)), string(q.Difficulty), pq.Array(nonNil(q.Exclude)), q.Limit}
	if q.Salt == "" {
		return query + ` ORDER BY id LIMIT $4`, args
	}
	return query + ` ORDER BY md5(id || $5), id LIMIT $4`, append(args, q.Salt)
}

func (s *Store) FetchByYear(ctx context.Context, q exam.YearQuery) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE year = $1 AND area = ANY($2)
		 ORDER BY booklet_position, id LIMIT NULLIF($3, 0)`,
		q.Year, pq.Array(areaStrings(q.Areas)), q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch booklet %d: %w", q.Year, err)
	}
	return scanItems(rows)
}

// ── Item Management ─────────────────────────────────────

func (s *Store) GetItem(ctx context.Context, id string) (*models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &items[0], nil
}

// UpsertItems inserts or replaces items in one transaction.
func (s *Store) UpsertItems(ctx context.Context, items []models.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		a, b, c := nullParams(item.IRT)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (`+itemColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO UPDATE SET
			   area = EXCLUDED.area, difficulty = EXCLUDED.difficulty,
			   irt_a = EXCLUDED.irt_a, irt_b = EXCLUDED.irt_b, irt_c = EXCLUDED.irt_c,
			   topic = EXCLUDED.topic, competencies = EXCLUDED.competencies,
			   year = EXCLUDED.year, booklet_position = EXCLUDED.booklet_position,
			   content_ref = EXCLUDED.content_ref, updated_at = NOW()`,
			item.ID, item.Area, item.Difficulty, a, b, c, item.Topic,
			pq.Array(nonNil(item.Competencies)), nullInt(item.Year), nullInt(item.BookletPosition), item.ContentRef,
		)
		if err != nil {
			return fmt.Errorf("upsert item %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

// ── Responses & Calibration ─────────────────────────────

func (s *Store) RecordResponse(ctx context.Context, candidateID int64, req models.RecordResponseRequest) (*models.ResponseEvent, error) {
	ev := models.ResponseEvent{
		CandidateID: candidateID,
		ItemID:      req.ItemID,
		Theta:       req.Theta,
		Correct:     req.Correct,
		TimeSpent:   req.TimeSpentSeconds,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO response_events (candidate_id, item_id, theta, correct, time_spent_seconds)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		candidateID, req.ItemID, req.Theta, req.Correct, req.TimeSpentSeconds,
	).Scan(&ev.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, fmt.Errorf("item %s: %w", req.ItemID, ErrNotFound)
		}
		return nil, fmt.Errorf("record response: %w", err)
	}
	return &ev, nil
}

func (s *Store) ResponseSamples(ctx context.Context, itemID string) ([]irt.CalibrationSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT theta, correct FROM response_events WHERE item_id = $1 ORDER BY id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	defer rows.Close()

	var samples []irt.CalibrationSample
	for rows.Next() {
		var sample irt.CalibrationSample
		if err := rows.Scan(&sample.Theta, &sample.Correct); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// ItemsWithResponses lists items with at least minResponses recorded answers.
func (s *Store) ItemsWithResponses(ctx context.Context, minResponses int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM response_events
		 GROUP BY item_id HAVING COUNT(*) >= $1
		 ORDER BY item_id`,
		minResponses,
	)
	if err != nil {
		return nil, fmt.Errorf("list calibration candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveCalibration records the result and writes the new parameters onto the
// item.
func (s *Store) SaveCalibration(ctx context.Context, res irt.CalibrationResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO calibration_results
		 (item_id, irt_a, irt_b, irt_c, chi_square, df, p_value, rmse, infit, outfit,
		  quality, sample_size, log_likelihood, iterations, converged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		res.ItemID, res.Params.A, res.Params.B, res.Params.C,
		res.Fit.ChiSquare, res.Fit.DF, res.Fit.PValue, res.Fit.RMSE, res.Fit.Infit, res.Fit.Outfit,
		res.Quality, res.SampleSize, res.LogLikelihood, res.Iterations, res.Converged,
	)
	if err != nil {
		return fmt.Errorf("insert calibration result: %w", err)
	}

	out, err := tx.ExecContext(ctx,
		`UPDATE items SET irt_a = $1, irt_b = $2, irt_c = $3, updated_at = NOW() WHERE id = $4`,
		res.Params.A, res.Params.B, res.Params.C, res.ItemID,
	)
	if err != nil {
		return fmt.Errorf("update item parameters: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", res.ItemID, ErrNotFound)
	}
	return tx.Commit()
}

// ── Exam Templates ──────────────────────────────────────

func (s *Store) SaveExamTemplate(ctx context.Context, tmpl *models.ExamTemplate) error {
	payload, err := json.Marshal(tmpl.Exam)
	if err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}
	var candidateID *int64
	if tmpl.CandidateID > 0 {
		candidateID = &tmpl.CandidateID
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO exam_templates (id, candidate_id, mode, exam)
		 VALUES ($1, $2, $3, $4) RETURNING created_at`,
		tmpl.ID, candidateID, tmpl.Exam.Config.Mode, payload,
	).Scan(&tmpl.CreatedAt)
	if err != nil {
		return fmt.Errorf("save exam template: %w", err)
	}
	return nil
}

func (s *Store) GetExamTemplate(ctx context.Context, id string) (*models.ExamTemplate, error) {
	var (
		tmpl        models.ExamTemplate
		candidateID sql.NullInt64
		payload     []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, candidate_id, exam, created_at FROM exam_templates WHERE id = $1`,
		id,
	).Scan(&tmpl.ID, &candidateID, &payload, &tmpl.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get exam template: %w", err)
	}
	tmpl.CandidateID = candidateID.Int64
	if err := json.Unmarshal(payload, &tmpl.Exam); err != nil {
		return nil, fmt.Errorf("decode exam: %w", err)
	}
	return &tmpl, nil
}

// ── Helpers ─────────────────────────────────────────────

func scanItems(rows *sql.Rows) ([]models.Item, error) {
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var (
			item           models.Item
			a, b, c        sql.NullFloat64
			competencies   []string
			year, position sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Area, &item.Difficulty, &a, &b, &c,
			&item.Topic, pq.Array(&competencies), &year, &position, &item.ContentRef); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.IRT = paramsFromNull(a, b, c)
		item.Competencies = competencies
		item.Year = int(year.Int64)
		item.BookletPosition = int(position.Int64)
		item.Provenance = models.ProvenanceReal
		item.Source = primarySourceName
		items = append(items, item)
	}
	return items, rows.Err()
}

func areaStrings(areas []models.Area) []string {
	if len(areas) == 0 {
		areas = models.AllAreas
	}
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = string(a)
	}
	return out
}

func nullParams(p *irt.Parameters) (a, b, c sql.NullFloat64) {
	if p == nil || !p.Valid() {
		return
	}
	return sql.NullFloat64{Float64: p.A, Valid: true},
		sql.NullFloat64{Float64: p.B, Valid: true},
		sql.NullFloat64{Float64: p.C, Valid: true}
}

func paramsFromNull(a, b, c sql.NullFloat64) *irt.Parameters {
	if !a.Valid || !b.Valid || !c.Valid {
		return nil
	}
	return &irt.Parameters{A: a.Float64, B: b.Float64, C: c.Float64}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
