package items

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/models"
)

// ErrInvalidInput marks request problems that are not exam config errors.
var ErrInvalidInput = errors.New("invalid input")

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	GetItem(ctx context.Context, id string) (*models.Item, error)
	RecordResponse(ctx context.Context, candidateID int64, req models.RecordResponseRequest) (*models.ResponseEvent, error)
	ResponseSamples(ctx context.Context, itemID string) ([]irt.CalibrationSample, error)
	ItemsWithResponses(ctx context.Context, minResponses int) ([]string, error)
	SaveCalibration(ctx context.Context, res irt.CalibrationResult) error
	SaveExamTemplate(ctx context.Context, tmpl *models.ExamTemplate) error
	GetExamTemplate(ctx context.Context, id string) (*models.ExamTemplate, error)
}

type ServiceConfig struct {
	CalibrationMinResponses int
	CalibrationWorkers      int
}

type Service struct {
	repo      Repository
	assembler *exam.Assembler
	log       *logger.Logger
	cfg       ServiceConfig
}

func NewService(repo Repository, assembler *exam.Assembler, cfg ServiceConfig, log *logger.Logger) *Service {
	if cfg.CalibrationMinResponses <= 0 {
		cfg.CalibrationMinResponses = 50
	}
	if cfg.CalibrationWorkers <= 0 {
		cfg.CalibrationWorkers = 4
	}
	log = log.With("component", "items")
	log.Info("service configured",
		"calibration_min_responses", cfg.CalibrationMinResponses,
		"calibration_workers", cfg.CalibrationWorkers,
	)
	return &Service{repo: repo, assembler: assembler, log: log, cfg: cfg}
}

// ── Scoring ─────────────────────────────────────────────

func (s *Service) EstimateProficiency(req models.EstimateRequest) (*models.EstimateResponse, error) {
	for i, r := range req.Responses {
		if !r.Params.Valid() {
			return nil, fmt.Errorf("%w: responses[%d] has invalid item parameters", ErrInvalidInput, i)
		}
	}

	theta0 := 0.0
	if req.Theta0 != nil {
		theta0 = *req.Theta0
	}
	est, err := irt.EstimateProficiencyFrom(req.Responses, theta0)
	if err != nil {
		return nil, err
	}
	if err := est.ConvergenceErr(); err != nil {
		s.log.Warn("proficiency estimate did not converge", "err", err, "responses", len(req.Responses))
	}

	return &models.EstimateResponse{
		Estimate:        est,
		Score:           irt.ProficiencyToScore(est.Theta),
		ScoreLower:      irt.ProficiencyToScore(est.ConfidenceInterval.Lower),
		ScoreUpper:      irt.ProficiencyToScore(est.ConfidenceInterval.Upper),
		TestReliability: irt.TestReliability(req.Responses),
	}, nil
}

// ConvertScore maps exactly one of theta or score onto the other scale.
func (s *Service) ConvertScore(theta, score *float64) (*models.ScoreConversion, error) {
	switch {
	case theta != nil && score != nil:
		return nil, fmt.Errorf("%w: pass either theta or score, not both", ErrInvalidInput)
	case theta != nil:
		if math.IsNaN(*theta) || math.IsInf(*theta, 0) {
			return nil, fmt.Errorf("%w: theta must be finite", ErrInvalidInput)
		}
		return &models.ScoreConversion{Theta: *theta, Score: irt.ProficiencyToScore(*theta)}, nil
	case score != nil:
		if math.IsNaN(*score) || math.IsInf(*score, 0) {
			return nil, fmt.Errorf("%w: score must be finite", ErrInvalidInput)
		}
		t := irt.ScoreToProficiency(*score)
		return &models.ScoreConversion{Theta: t, Score: irt.ProficiencyToScore(t)}, nil
	default:
		return nil, fmt.Errorf("%w: theta or score is required", ErrInvalidInput)
	}
}

func (s *Service) AdaptiveSequence(req models.AdaptiveSequenceRequest) (*models.AdaptiveSequenceResponse, error) {
	for i, item := range req.Pool {
		if item.ID == "" || !item.Params.Valid() {
			return nil, fmt.Errorf("%w: pool[%d] needs an id and valid parameters", ErrInvalidInput, i)
		}
	}
	ids := irt.GenerateAdaptiveSequence(req.Theta0, req.Pool, req.MaxItems)
	return &models.AdaptiveSequenceResponse{
		ItemIDs:   ids,
		Requested: req.MaxItems,
		Returned:  len(ids),
	}, nil
}

// ── Exams ───────────────────────────────────────────────

// GenerateExam assembles an exam and stores it as a template.
func (s *Service) GenerateExam(ctx context.Context, candidateID int64, cfg models.ExamConfig) (*models.ExamTemplate, error) {
	result, err := s.assembler.GenerateExam(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tmpl := &models.ExamTemplate{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Exam:        *result,
	}
	if err := s.repo.SaveExamTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	s.log.Info("exam template saved", "exam_id", tmpl.ID, "mode", cfg.Mode, "synthetic", result.Metadata.SyntheticCount)
	return tmpl, nil
}

// GetExam returns a stored template to the candidate who generated it.
// Other candidates get ErrNotFound.
func (s *Service) GetExam(ctx context.Context, candidateID int64, id string) (*models.ExamTemplate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	tmpl, err := s.repo.GetExamTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.CandidateID != candidateID {
		return nil, fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	return tmpl, nil
}

// ── Responses & Calibration ─────────────────────────────

func (s *Service) RecordResponse(ctx context.Context, candidateID int64, req models.RecordResponseRequest) (*models.ResponseEvent, error) {
	if req.ItemID == "" {
		return nil, fmt.Errorf("%w: item_id is required", ErrInvalidInput)
	}
	if math.IsNaN(req.Theta) || req.Theta < irt.ThetaMin || req.Theta > irt.ThetaMax {
		return nil, fmt.Errorf("%w: theta must be within [%g, %g]", ErrInvalidInput, irt.ThetaMin, irt.ThetaMax)
	}
	if req.TimeSpentSeconds != nil && *req.TimeSpentSeconds < 0 {
		return nil, fmt.Errorf("%w: time_spent_seconds must not be negative", ErrInvalidInput)
	}
	return s.repo.RecordResponse(ctx, candidateID, req)
}

// CalibrateItem calibrates one item. Without explicit samples the stored
// response events are used; without explicit initial parameters the item's
// current ones are.
func (s *Service) CalibrateItem(ctx context.Context, itemID string, req models.CalibrateItemRequest) (*irt.CalibrationResult, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	samples := req.Samples
	if len(samples) == 0 {
		if samples, err = s.repo.ResponseSamples(ctx, itemID); err != nil {
			return nil, err
		}
	}
	initial := req.Initial
	if initial == nil {
		initial = item.IRT
	}

	res, err := irt.CalibrateItem(itemID, samples, initial)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCalibration(ctx, res); err != nil {
		return nil, err
	}
	if cerr := res.ConvergenceErr(); cerr != nil {
		s.log.Warn("calibration did not converge", "item_id", itemID, "err", cerr)
	}
	return &res, nil
}

// RunCalibration calibrates every item with enough recorded responses,
// CalibrationWorkers at a time. An item that fails is logged and left out of
// Results; the run only aborts when ctx is done. Results keep the candidate
// order.
func (s *Service) RunCalibration(ctx context.Context, minResponses int) (*models.CalibrationRunResponse, error) {
	if minResponses <= 0 {
		minResponses = s.cfg.CalibrationMinResponses
	}
	ids, err := s.repo.ItemsWithResponses(ctx, minResponses)
	if err != nil {
		return nil, err
	}

	results := make([]*irt.CalibrationResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.CalibrationWorkers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.calibrateStored(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.log.Warn("item calibration failed", "item_id", id, "err", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("calibration run: %w", err)
	}

	resp := &models.CalibrationRunResponse{Evaluated: len(ids), Results: []irt.CalibrationResult{}}
	for _, res := range results {
		if res == nil {
			resp.Failed++
			continue
		}
		resp.Calibrated++
		if !res.Converged {
			resp.NotConverged++
		}
		resp.Results = append(resp.Results, *res)
	}

	s.log.Info("calibration run finished",
		"evaluated", resp.Evaluated,
		"calibrated", resp.Calibrated,
		"failed", resp.Failed,
		"not_converged", resp.NotConverged,
		"min_responses", minResponses,
	)
	return resp, nil
}

// calibrateStored calibrates id from its stored responses, starting at its
// current parameters, and saves the result.
func (s *Service) calibrateStored(ctx context.Context, id string) (*irt.CalibrationResult, error) {
	samples, err := s.repo.ResponseSamples(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := irt.CalibrateItem(id, samples, item.IRT)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCalibration(ctx, res); err != nil {
		return nil, err
	}
	return &res, nil
}
