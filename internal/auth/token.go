// Package auth issues and verifies the signed, time-limited tokens the
// service hands out: session tokens for logged-in users and one-shot-intent
// links for account activation and password reset.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Purpose string

const (
	PurposeSession    Purpose = "session"
	PurposeActivation Purpose = "activate"
	PurposeReset      Purpose = "reset"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type Claims struct {
	jwt.RegisteredClaims
	UserID  string  `json:"uid"`
	Purpose Purpose `json:"purpose"`
}

type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

func (t *TokenIssuer) Generate(userID string, purpose Purpose, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID:  userID,
		Purpose: purpose,
	})

	return token.SignedString(t.secret)
}

// Verify parses the token and returns the user id it was issued for. The
// purpose must match: an activation token is never accepted as a session
// token and vice versa.
func (t *TokenIssuer) Verify(tokenString string, purpose Purpose) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.Purpose != purpose {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
