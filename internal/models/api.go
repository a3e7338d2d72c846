package models

import "github.com/enem-prep/backend/internal/irt"

// ── Request Types ─────────────────────────────────────

type EstimateRequest struct {
	Responses []irt.ResponsePattern `json:"responses"`
	Theta0    *float64              `json:"theta0,omitempty"`
}

type RecordResponseRequest struct {
	ItemID           string   `json:"item_id"`
	Theta            float64  `json:"theta"`
	Correct          bool     `json:"correct"`
	TimeSpentSeconds *float64 `json:"time_spent_seconds,omitempty"`
}

type CalibrateItemRequest struct {
	Samples []irt.CalibrationSample `json:"samples,omitempty"`
	Initial *irt.Parameters         `json:"initial,omitempty"`
}

type CalibrationRunRequest struct {
	MinResponses int `json:"min_responses,omitempty"`
}

type AdaptiveSequenceRequest struct {
	Theta0   float64        `json:"theta0"`
	Pool     []irt.PoolItem `json:"pool"`
	MaxItems int            `json:"max_items"`
}

// ── Response Types ────────────────────────────────────

type EstimateResponse struct {
	Estimate        irt.ProficiencyEstimate `json:"estimate"`
	Score           int                     `json:"score"`
	ScoreLower      int                     `json:"score_lower"`
	ScoreUpper      int                     `json:"score_upper"`
	TestReliability float64                 `json:"test_reliability"`
}

type CalibrationRunResponse struct {
	Evaluated    int                     `json:"evaluated"`
	Calibrated   int                     `json:"calibrated"`
	Failed       int                     `json:"failed"`
	NotConverged int                     `json:"not_converged"`
	Results      []irt.CalibrationResult `json:"results"`
}

type ScoreConversion struct {
	Theta float64 `json:"theta"`
	Score int     `json:"score"`
}

type AdaptiveSequenceResponse struct {
	ItemIDs   []string `json:"item_ids"`
	Requested int      `json:"requested"`
	Returned  int      `json:"returned"`
}
