package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"expense-tracker-go/internal/auth"
	identitydomain "expense-tracker-go/internal/domain/identity"
	"expense-tracker-go/pkg/logger"
)

type contextKey int

const (
	userKey contextKey = iota
	userIDKey
)

type User struct {
	ID       string
	Username string
	Email    string
}

// TokenVerifier checks a session token and returns the user id it carries.
type TokenVerifier interface {
	Verify(token string, purpose auth.Purpose) (string, error)
}

// UserLoader resolves the token's user id to a live account.
type UserLoader interface {
	GetUserByID(ctx context.Context, userID string) (*identitydomain.User, error)
}

type JWTAuth struct {
	tokens TokenVerifier
	users  UserLoader
	log    logger.Logger
}

func NewJWTAuth(tokens TokenVerifier, users UserLoader, log logger.Logger) *JWTAuth {
	return &JWTAuth{tokens: tokens, users: users, log: log}
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		userID, err := a.tokens.Verify(token, auth.PurposeSession)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := a.users.GetUserByID(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, identitydomain.ErrUserNotFound) {
				a.log.InternalError("auth: load user failed", err, "user_id", userID)
			}
			unauthorized(w)
			return
		}

		// a token issued before deactivation must not keep working
		if !user.Active {
			unauthorized(w)
			return
		}

		ctx := WithUser(r.Context(), User{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    "invalid_token",
			"message": "invalid token",
		},
	})
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
