package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. Plaintext secrets (password, remember/activation/reset
// tokens) are never persisted; only their bcrypt digests are stored.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string     `gorm:"size:50;not null" json:"name"`
	Email            string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordDigest   string     `gorm:"not null" json:"-"`
	RememberDigest   *string    `json:"-"`
	ActivationDigest string     `json:"-"`
	Activated        bool       `gorm:"default:false" json:"activated"`
	ActivatedAt      *time.Time `json:"activated_at,omitempty"`
	ResetDigest      *string    `json:"-"`
	ResetSentAt      *time.Time `json:"-"`
	Admin            bool       `gorm:"default:false" json:"admin"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DigestKind names the digest consulted by generic token authentication.
type DigestKind string

const (
	DigestRemember   DigestKind = "remember"
	DigestActivation DigestKind = "activation"
	DigestReset      DigestKind = "reset"
)

// Digest returns the stored digest for the given kind, or nil when the
// account has none.
func (u *User) Digest(kind DigestKind) *string {
	switch kind {
	case DigestRemember:
		return u.RememberDigest
	case DigestActivation:
		if u.ActivationDigest == "" {
			return nil
		}
		return &u.ActivationDigest
	case DigestReset:
		return u.ResetDigest
	default:
		return nil
	}
}
