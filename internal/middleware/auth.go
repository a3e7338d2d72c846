package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/enem-prep/backend/internal/models"
)

type contextKey string

const candidateIDKey contextKey = "candidate_id"

// TokenParser verifies a bearer token and returns the candidate id it carries.
type TokenParser func(token string) (int64, error)

// Auth rejects requests without a valid bearer token and stores the
// candidate id in the request context.
func Auth(parse TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			candidateID, err := parse(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCandidateID(r.Context(), candidateID)))
		})
	}
}

// WithCandidateID returns ctx carrying the authenticated candidate id.
func WithCandidateID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, candidateIDKey, id)
}

func CandidateID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(candidateIDKey).(int64)
	return id, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
