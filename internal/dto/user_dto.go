package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UpdateUserRequest carries the fields a user may change about themselves.
// An empty password means "leave the password unchanged". Admin is
// deliberately absent: it is not settable through this path.
type UpdateUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Admin          bool      `json:"admin"`
	Activated      bool      `json:"activated"`
	CreatedAt      time.Time `json:"created_at"`
	FollowingCount int64     `json:"following_count"`
	FollowersCount int64     `json:"followers_count"`
}

type ErrorResponse struct {
	Error    bool     `json:"error"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
}
