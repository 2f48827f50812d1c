package handler

import (
	"errors"
	"net/http"
	"strings"

	identitydomain "expense-tracker-go/internal/domain/identity"
	"expense-tracker-go/internal/transport/httpserver/middleware"
	"expense-tracker-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type IdentityHandlers struct {
	service *identitydomain.Service
	log     logger.Logger
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

func toUserResponse(user *identitydomain.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Active:   user.Active,
	}
}

// ValidateUsername answers with a flat object carrying either
// username_valid or username_error; 400 for format, 409 for a taken name.
func (h *IdentityHandlers) ValidateUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	err := h.service.ValidateUsername(r.Context(), req.Username)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"username_valid": true})
	case errors.Is(err, identitydomain.ErrInvalidUsername):
		writeJSON(w, http.StatusBadRequest, map[string]string{"username_error": "username should only contain alphanumeric characters"})
	case errors.Is(err, identitydomain.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"username_error": "sorry username already in use, kindly choose another one"})
	default:
		h.log.InternalError("identity.validate_username failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (h *IdentityHandlers) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	err := h.service.ValidateEmail(r.Context(), req.Email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"email_valid": true})
	case errors.Is(err, identitydomain.ErrInvalidEmail):
		writeJSON(w, http.StatusBadRequest, map[string]string{"email_error": "email is invalid"})
	case errors.Is(err, identitydomain.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"email_error": "sorry email in use, choose another one"})
	default:
		h.log.InternalError("identity.validate_email failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (h *IdentityHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, err := h.service.Register(r.Context(), identitydomain.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrInvalidUsername),
			errors.Is(err, identitydomain.ErrInvalidEmail),
			errors.Is(err, identitydomain.ErrPasswordTooShort):
			h.log.BusinessError("identity.register: invalid input", err)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, identitydomain.ErrUsernameTaken),
			errors.Is(err, identitydomain.ErrEmailTaken):
			h.log.BusinessError("identity.register: conflict", err)
			writeError(w, http.StatusConflict, "conflict", err.Error())
		default:
			h.log.InternalError("identity.register failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "account created, check your email to activate it",
		"user":    toUserResponse(user),
	})
}

func (h *IdentityHandlers) Activate(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "uid"))
	token := strings.TrimSpace(chi.URLParam(r, "token"))

	err := h.service.Activate(r.Context(), userID, token)
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrBadToken), errors.Is(err, identitydomain.ErrUserNotFound):
			h.log.BusinessError("identity.activate: bad link", err, "user_id", userID)
			writeError(w, http.StatusBadRequest, "invalid_link", "activation link is invalid or has expired")
		default:
			h.log.InternalError("identity.activate failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "account activated successfully"})
}

func (h *IdentityHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrAccountNotActive):
			h.log.BusinessError("identity.login: inactive account", err, "username", req.Username)
			writeError(w, http.StatusForbidden, "account_not_active", "account is not active, please check your email")
		case errors.Is(err, identitydomain.ErrInvalidCredentials):
			h.log.BusinessError("identity.login: invalid credentials", err, "username", req.Username)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials, try again")
		default:
			h.log.InternalError("identity.login failed", err, "username", req.Username)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// Logout acknowledges the request; session tokens are stateless, the client
// discards its copy.
func (h *IdentityHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	h.log.Info("identity.logout", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "you have been logged out"})
}

// RequestPasswordReset answers identically whether or not the address is
// registered.
func (h *IdentityHandlers) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.log.InternalError("identity.request_password_reset failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "we have sent you an email to reset your password"})
}

func (h *IdentityHandlers) SetNewPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "uid"))
	token := strings.TrimSpace(chi.URLParam(r, "token"))

	err := h.service.CompletePasswordReset(r.Context(), identitydomain.ResetPasswordInput{
		UserID:          userID,
		Token:           token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrPasswordTooShort),
			errors.Is(err, identitydomain.ErrPasswordMismatch):
			h.log.BusinessError("identity.set_new_password: invalid input", err, "user_id", userID)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, identitydomain.ErrBadToken), errors.Is(err, identitydomain.ErrUserNotFound):
			h.log.BusinessError("identity.set_new_password: bad link", err, "user_id", userID)
			writeError(w, http.StatusBadRequest, "invalid_link", "reset link is invalid or has expired")
		default:
			h.log.InternalError("identity.set_new_password failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successfully"})
}
