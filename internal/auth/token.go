package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 72 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken signs an HS256 token carrying the candidate id.
func GenerateToken(secret []byte, candidateID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"candidate_id": candidateID,
		"exp":          now.Add(tokenTTL).Unix(),
		"iat":          now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry and returns the candidate id.
func ParseToken(secret []byte, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// JSON numbers decode as float64.
	id, ok := claims["candidate_id"].(float64)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("%w: missing candidate_id", ErrInvalidToken)
	}
	return int64(id), nil
}
