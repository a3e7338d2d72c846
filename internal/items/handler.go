package items

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/middleware"
	"github.com/enem-prep/backend/internal/models"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("component", "items_http")}
}

// ── Exams ───────────────────────────────────────────────

func (h *Handler) GenerateExam(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := middleware.CandidateID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var cfg models.ExamConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	tmpl, err := h.service.GenerateExam(r.Context(), candidateID, cfg)
	if err != nil {
		h.writeError(w, "generate exam", err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := middleware.CandidateID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	tmpl, err := h.service.GetExam(r.Context(), candidateID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, "get exam", err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// ── Scoring ─────────────────────────────────────────────

func (h *Handler) EstimateProficiency(w http.ResponseWriter, r *http.Request) {
	var req models.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.EstimateProficiency(req)
	if err != nil {
		h.writeError(w, "estimate proficiency", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ConvertScore(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	theta, err := floatQueryParam(query, "theta")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "theta must be a number"})
		return
	}
	score, err := floatQueryParam(query, "score")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "score must be a number"})
		return
	}

	conv, err := h.service.ConvertScore(theta, score)
	if err != nil {
		h.writeError(w, "convert score", err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *Handler) AdaptiveSequence(w http.ResponseWriter, r *http.Request) {
	var req models.AdaptiveSequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.AdaptiveSequence(req)
	if err != nil {
		h.writeError(w, "adaptive sequence", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Responses & Calibration ─────────────────────────────

func (h *Handler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := middleware.CandidateID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.RecordResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ev, err := h.service.RecordResponse(r.Context(), candidateID, req)
	if err != nil {
		h.writeError(w, "record response", err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *Handler) CalibrateItem(w http.ResponseWriter, r *http.Request) {
	var req models.CalibrateItemRequest
	// An empty body calibrates from stored responses.
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}

	res, err := h.service.CalibrateItem(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, "calibrate item", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RunCalibration(w http.ResponseWriter, r *http.Request) {
	var req models.CalibrationRunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}
	if req.MinResponses == 0 {
		req.MinResponses = intQueryParam(r.URL.Query(), "min_responses", 0)
	}

	resp, err := h.service.RunCalibration(r.Context(), req.MinResponses)
	if err != nil {
		h.writeError(w, "run calibration", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"modes":        exam.SupportedModes(),
		"areas":        models.AllAreas,
		"difficulties": models.Difficulties,
	})
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without its detail.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var verr *exam.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, exam.ErrUnsupportedMode),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, irt.ErrInsufficientData):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error(op+" failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	if v := query.Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// floatQueryParam returns nil when key is absent.
func floatQueryParam(query url.Values, key string) (*float64, error) {
	v := query.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
