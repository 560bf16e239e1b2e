package dto

import "github.com/google/uuid"

type FollowRequest struct {
	FollowedID uuid.UUID `json:"followed_id"`
}
