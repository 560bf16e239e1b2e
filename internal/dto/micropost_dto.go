package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMicropostRequest struct {
	Content string `json:"content"`
}

type MicropostResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
