package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/auth"
	"github.com/microblog-app/backend/internal/models"
)

// ErrInvalidCredentials is deliberately generic: it never reveals whether the
// email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// SessionService validates login attempts and persistent-session tokens.
type SessionService struct {
	users *UserService
}

func NewSessionService(users *UserService) *SessionService {
	return &SessionService{users: users}
}

// Login authenticates an email/password pair. Lookup is case-insensitive;
// both an unknown email and a wrong password yield ErrInvalidCredentials.
func (s *SessionService) Login(email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyDigest(&user.PasswordDigest, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResolveFromRememberToken backs persistent "remember me" sessions: it loads
// the user by id and checks the token against the stored remember digest.
// It returns (nil, nil) when the id is unknown or the token does not match.
func (s *SessionService) ResolveFromRememberToken(id uuid.UUID, token string) (*models.User, error) {
	user, err := s.users.Find(id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.users.Authenticated(user, models.DigestRemember, token) {
		return nil, nil
	}
	return user, nil
}

// Logout drops the persistent session.
func (s *SessionService) Logout(user *models.User) error {
	return s.users.Forget(user)
}
