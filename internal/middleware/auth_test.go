package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func fakeParser(token string) (int64, error) {
	if token == "bad" {
		return 0, errors.New("bad token")
	}
	return strconv.ParseInt(token, 10, 64)
}

func TestAuth(t *testing.T) {
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CandidateID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Auth(fakeParser)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     int64
	}{
		{"valid", "Bearer 17", http.StatusNoContent, 17},
		{"missing", "", http.StatusUnauthorized, 0},
		{"wrong scheme", "Basic 17", http.StatusUnauthorized, 0},
		{"empty token", "Bearer  ", http.StatusUnauthorized, 0},
		{"rejected", "Bearer bad", http.StatusUnauthorized, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantID {
				t.Errorf("candidate id = %d, want %d", seen, tt.wantID)
			}
		})
	}
}
