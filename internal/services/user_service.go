package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/auth"
	"github.com/microblog-app/backend/internal/config"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/mailer"
	"github.com/microblog-app/backend/internal/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

const (
	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength = 8
	// PasswordResetValidity is how long a password reset token stays usable.
	PasswordResetValidity = 2 * time.Hour
	nameMaxLength         = 50
	emailMaxLength        = 255
)

type UserService struct {
	db     *gorm.DB
	mailer mailer.Mailer
	cost   int
	now    func() time.Time
}

func NewUserService(db *gorm.DB, m mailer.Mailer, cfg *config.Config) *UserService {
	return &UserService{
		db:     db,
		mailer: m,
		cost:   cfg.BcryptCost,
		now:    time.Now,
	}
}

// Create registers a new, not-yet-activated user. All field rules are checked
// before anything is written; on success an activation token is generated,
// only its digest persisted, and the activation email dispatched
// fire-and-forget.
func (s *UserService) Create(req *dto.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	fe := newFieldErrors()
	s.validateName(fe, req.Name)
	s.validateEmail(fe, email, uuid.Nil)
	s.validatePassword(fe, req.Password, req.PasswordConfirmation, true)
	if err := fe.result(); err != nil {
		return nil, err
	}

	passwordDigest, err := auth.HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, err
	}
	activationToken, err := auth.NewToken()
	if err != nil {
		return nil, err
	}
	activationDigest, err := auth.HashPassword(activationToken, s.cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		PasswordDigest:   passwordDigest,
		ActivationDigest: activationDigest,
		Activated:        false,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	go func() {
		if err := s.mailer.SendActivationEmail(user, activationToken); err != nil {
			slog.Error("failed to send activation email", "user_id", user.ID.String(), "error", err)
		}
	}()

	return user, nil
}

// Update changes a user's own mutable fields. The allow-list is name, email
// and password; admin cannot be reached through this path. An empty password
// leaves the stored digest untouched.
func (s *UserService) Update(id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.Find(id)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)

	fe := newFieldErrors()
	s.validateName(fe, req.Name)
	s.validateEmail(fe, email, user.ID)
	if req.Password != "" || req.PasswordConfirmation != "" {
		s.validatePassword(fe, req.Password, req.PasswordConfirmation, false)
	}
	if err := fe.result(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"email": email,
	}
	if req.Password != "" {
		digest, err := auth.HashPassword(req.Password, s.cost)
		if err != nil {
			return nil, err
		}
		updates["password_digest"] = digest
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserService) Find(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks a user up case-insensitively; emails are stored
// lower-cased so normalizing the argument suffices.
func (s *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", normalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns users newest-first for the index page.
func (s *UserService) List(limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// Destroy removes a user together with every follow edge touching them (both
// directions) and all their microposts, in one transaction.
func (s *UserService) Destroy(id uuid.UUID) error {
	user, err := s.Find(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Relationship{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Micropost{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

// Remember issues a fresh remember token, persists only its digest, and
// returns the plaintext for the caller's cookie.
func (s *UserService) Remember(user *models.User) (string, error) {
	token, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	digest, err := auth.HashPassword(token, s.cost)
	if err != nil {
		return "", err
	}
	if err := s.db.Model(user).Update("remember_digest", digest).Error; err != nil {
		return "", fmt.Errorf("failed to store remember digest: %w", err)
	}
	user.RememberDigest = &digest
	return token, nil
}

// Forget drops the persistent session digest. Calling it with no active
// remember digest is a no-op.
func (s *UserService) Forget(user *models.User) error {
	if err := s.db.Model(user).Update("remember_digest", nil).Error; err != nil {
		return fmt.Errorf("failed to clear remember digest: %w", err)
	}
	user.RememberDigest = nil
	return nil
}

// Authenticated reports whether token matches the user's digest of the given
// kind. A missing digest always fails.
func (s *UserService) Authenticated(user *models.User, kind models.DigestKind, token string) bool {
	return auth.VerifyDigest(user.Digest(kind), token)
}

// Activate marks the account as activated. Activating twice is harmless.
func (s *UserService) Activate(user *models.User) error {
	now := s.now()
	err := s.db.Model(user).Updates(map[string]interface{}{
		"activated":    true,
		"activated_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	user.Activated = true
	user.ActivatedAt = &now
	return nil
}

// CreateResetDigest issues a password reset token, overwriting any previous
// reset state so at most one token is live per account. The plaintext token
// is returned for the reset email.
func (s *UserService) CreateResetDigest(user *models.User) (string, error) {
	token, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	digest, err := auth.HashPassword(token, s.cost)
	if err != nil {
		return "", err
	}
	now := s.now()
	err = s.db.Model(user).Updates(map[string]interface{}{
		"reset_digest":  digest,
		"reset_sent_at": now,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to store reset digest: %w", err)
	}
	user.ResetDigest = &digest
	user.ResetSentAt = &now
	return token, nil
}

// PasswordResetExpired reports whether the reset token issuance is strictly
// older than PasswordResetValidity. A user with no issuance is expired.
func (s *UserService) PasswordResetExpired(user *models.User) bool {
	if user.ResetSentAt == nil {
		return true
	}
	return s.now().Sub(*user.ResetSentAt) > PasswordResetValidity
}

// UpdatePassword validates and applies a new password and invalidates any
// outstanding reset token.
func (s *UserService) UpdatePassword(user *models.User, password, confirmation string) error {
	fe := newFieldErrors()
	s.validatePassword(fe, password, confirmation, true)
	if err := fe.result(); err != nil {
		return err
	}

	digest, err := auth.HashPassword(password, s.cost)
	if err != nil {
		return err
	}
	err = s.db.Model(user).Updates(map[string]interface{}{
		"password_digest": digest,
		"reset_digest":    nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordDigest = digest
	user.ResetDigest = nil
	return nil
}

func (s *UserService) validateName(fe *fieldErrors, name string) {
	fe.check("name", name,
		validation.By(notBlank),
		validation.RuneLength(0, nameMaxLength).Error(fmt.Sprintf("is too long (maximum is %d characters)", nameMaxLength)),
	)
}

// validateEmail checks presence, length and format, then uniqueness against
// every other account. selfID exempts the account being updated.
func (s *UserService) validateEmail(fe *fieldErrors, email string, selfID uuid.UUID) {
	fe.check("email", email,
		validation.By(notBlank),
		validation.RuneLength(0, emailMaxLength).Error(fmt.Sprintf("is too long (maximum is %d characters)", emailMaxLength)),
		validation.By(validEmailFormat),
	)
	if _, taken := fe.fields["email"]; taken {
		return
	}

	var count int64
	q := s.db.Model(&models.User{}).Where("email = ?", email)
	if selfID != uuid.Nil {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err == nil && count > 0 {
		fe.add("email", "has already been taken")
	}
}

func (s *UserService) validatePassword(fe *fieldErrors, password, confirmation string, required bool) {
	if required || password != "" {
		fe.check("password", password,
			validation.By(notBlank),
			validation.RuneLength(PasswordMinLength, 0).Error(fmt.Sprintf("is too short (minimum is %d characters)", PasswordMinLength)),
		)
	}
	if password != confirmation {
		fe.add("password_confirmation", "doesn't match Password")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
