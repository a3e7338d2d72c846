package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/enem-prep/backend/internal/logger"
	"github.com/enem-prep/backend/internal/middleware"
	"github.com/enem-prep/backend/internal/models"
)

const (
	minPasswordLength = 8

	uniqueViolation = "23505"
)

type Handler struct {
	db     *sql.DB
	secret []byte
	log    *logger.Logger
}

func NewHandler(db *sql.DB, secret []byte, log *logger.Logger) *Handler {
	return &Handler{db: db, secret: secret, log: log.With("component", "auth")}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req = normalizeRegister(req)
	if msg := validateRegister(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error("hash password", "err", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	var c models.Candidate
	now := time.Now()
	err = h.db.QueryRowContext(r.Context(),
		`INSERT INTO candidates (email, name, password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, email, name, created_at, updated_at`,
		req.Email, req.Name, string(hashedPassword), now, now,
	).Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
			return
		}
		h.log.Error("create candidate", "err", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account"})
		return
	}

	token, err := GenerateToken(h.secret, c.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	h.log.Info("candidate registered", "candidate_id", c.ID)
	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, Candidate: c})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}

	var c models.Candidate
	var hashedPassword string
	err := h.db.QueryRowContext(r.Context(),
		`SELECT id, email, name, password, created_at, updated_at FROM candidates WHERE email = $1`,
		req.Email,
	).Scan(&c.ID, &c.Email, &c.Name, &hashedPassword, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}
	if err != nil {
		h.log.Error("load candidate", "err", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, err := GenerateToken(h.secret, c.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, Candidate: c})
}

func (h *Handler) GetCurrentCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := middleware.CandidateID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var c models.Candidate
	err := h.db.QueryRowContext(r.Context(),
		`SELECT id, email, name, created_at, updated_at FROM candidates WHERE id = $1`,
		candidateID,
	).Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Candidate not found"})
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func normalizeRegister(req models.RegisterRequest) models.RegisterRequest {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	return req
}

// validateRegister returns a user-facing message, or "" when req is valid.
func validateRegister(req models.RegisterRequest) string {
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return "Email, name, and password are required"
	}
	if !strings.Contains(req.Email, "@") {
		return "Email is invalid"
	}
	if len(req.Password) < minPasswordLength {
		return "Password must be at least 8 characters"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
