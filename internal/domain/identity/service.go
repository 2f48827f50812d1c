package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"expense-tracker-go/internal/auth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Tokens issues and verifies the signed values embedded in activation and
// reset links, and the session tokens returned on login.
type Tokens interface {
	Generate(userID string, purpose auth.Purpose, ttl time.Duration) (string, error)
	Verify(token string, purpose auth.Purpose) (string, error)
}

// Mailer delivers account emails. Delivery is blocking on the request path;
// callers decide what a failure means for the operation in flight.
type Mailer interface {
	SendActivation(ctx context.Context, to, username, link string) error
	SendPasswordReset(ctx context.Context, to, username, link string) error
}

type Config struct {
	BaseURL       string
	SessionTTL    time.Duration
	ActivationTTL time.Duration
	ResetTTL      time.Duration
}

type Service struct {
	repo   Repository
	tokens Tokens
	mailer Mailer
	cfg    Config
}

func NewService(repo Repository, tokens Tokens, mailer Mailer, cfg Config) *Service {
	return &Service{repo: repo, tokens: tokens, mailer: mailer, cfg: cfg}
}

func (s *Service) ValidateUsername(ctx context.Context, username string) error {
	if !isAlphanumeric(username) {
		return ErrInvalidUsername
	}
	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	return nil
}

func (s *Service) ValidateEmail(ctx context.Context, email string) error {
	if !isValidEmail(email) {
		return ErrInvalidEmail
	}
	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

// Register creates an inactive account and emails the activation link. The
// user row survives a failed email send so the address can still be reached
// through the password-reset flow, which also activates the account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if !isAlphanumeric(username) {
		return nil, ErrInvalidUsername
	}
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Active:       false,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		usernameTaken, err := tx.UsernameExists(ctx, username)
		if err != nil {
			return err
		}
		if usernameTaken {
			return ErrUsernameTaken
		}

		emailTaken, err := tx.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if emailTaken {
			return ErrEmailTaken
		}

		return tx.CreateUser(ctx, &user)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, auth.PurposeActivation, s.cfg.ActivationTTL)
	if err != nil {
		return nil, fmt.Errorf("generate activation token: %w", err)
	}

	link := fmt.Sprintf("%s/authentication/activate/%s/%s", strings.TrimRight(s.cfg.BaseURL, "/"), user.ID, token)
	if err := s.mailer.SendActivation(ctx, user.Email, user.Username, link); err != nil {
		return nil, fmt.Errorf("send activation email: %w", err)
	}

	return &user, nil
}

// Activate flips the account active once. Re-presenting a valid token for an
// already-active account is a success no-op.
func (s *Service) Activate(ctx context.Context, userID, token string) error {
	tokenUserID, err := s.tokens.Verify(token, auth.PurposeActivation)
	if err != nil || tokenUserID != userID {
		return ErrBadToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Active {
		return nil
	}

	user.Active = true
	return s.repo.UpdateUser(ctx, user)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.Active {
		return "", nil, ErrAccountNotActive
	}

	token, err := s.tokens.Generate(user.ID, auth.PurposeSession, s.cfg.SessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	return token, user, nil
}

// RequestPasswordReset never reveals whether the email exists: an unknown
// address is a silent success with no email sent.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.Generate(user.ID, auth.PurposeReset, s.cfg.ResetTTL)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	link := fmt.Sprintf("%s/authentication/set-new-password/%s/%s", strings.TrimRight(s.cfg.BaseURL, "/"), user.ID, token)
	return s.mailer.SendPasswordReset(ctx, user.Email, user.Username, link)
}

// CompletePasswordReset sets the new password and activates the account, the
// reset link having proven control of the email address.
func (s *Service) CompletePasswordReset(ctx context.Context, input ResetPasswordInput) error {
	tokenUserID, err := s.tokens.Verify(input.Token, auth.PurposeReset)
	if err != nil || tokenUserID != input.UserID {
		return ErrBadToken
	}

	if len(input.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.repo.GetUserByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.Active = true
	return s.repo.UpdateUser(ctx, user)
}

func isAlphanumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isValidEmail(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := mail.ParseAddress(value)
	return err == nil && parsed.Address == value
}
