package services

import (
	"errors"
	"log/slog"

	"github.com/microblog-app/backend/internal/mailer"
	"github.com/microblog-app/backend/internal/models"
)

var (
	// ErrResetInvalid covers an unknown email, an unactivated account, or a
	// token that does not match the stored reset digest.
	ErrResetInvalid = errors.New("password reset link is invalid")
	// ErrResetExpired is distinct from ErrResetInvalid so callers can route
	// users to "request a new link" instead of a generic failure page.
	ErrResetExpired = errors.New("password reset has expired")
)

// PasswordResetService drives the reset flow: request a token, validate the
// emailed link, and consume it to set a new password.
type PasswordResetService struct {
	users  *UserService
	mailer mailer.Mailer
}

func NewPasswordResetService(users *UserService, m mailer.Mailer) *PasswordResetService {
	return &PasswordResetService{users: users, mailer: m}
}

// Request issues a reset token for the account behind email and dispatches
// the reset email fire-and-forget. An unknown email is a silent no-op so the
// endpoint cannot be used to enumerate accounts.
func (s *PasswordResetService) Request(email string) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			slog.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.users.CreateResetDigest(user)
	if err != nil {
		return err
	}

	go func() {
		if err := s.mailer.SendPasswordResetEmail(user, token); err != nil {
			slog.Error("failed to send password reset email", "user_id", user.ID.String(), "error", err)
		}
	}()

	return nil
}

// ValidateLink checks an emailed reset link. Expiry is reported separately
// from invalidity even when email and token match.
func (s *PasswordResetService) ValidateLink(email, token string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrResetInvalid
		}
		return nil, err
	}
	if !user.Activated || !s.users.Authenticated(user, models.DigestReset, token) {
		return nil, ErrResetInvalid
	}
	if s.users.PasswordResetExpired(user) {
		return nil, ErrResetExpired
	}
	return user, nil
}

// Consume re-validates the link at submission time, then applies the new
// password. Success clears the reset digest so the token cannot be reused.
func (s *PasswordResetService) Consume(email, token, password, confirmation string) (*models.User, error) {
	user, err := s.ValidateLink(email, token)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(user, password, confirmation); err != nil {
		return nil, err
	}
	return user, nil
}
