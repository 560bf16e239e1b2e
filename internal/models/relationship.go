package models

import (
	"time"

	"github.com/google/uuid"
)

// Relationship is a directed follow edge between two users. The composite
// unique index guarantees at most one edge per (follower, followed) pair.
type Relationship struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_relationships_pair;index" json:"follower_id"`
	FollowedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_relationships_pair;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
	Follower   User      `gorm:"foreignKey:FollowerID" json:"-"`
	Followed   User      `gorm:"foreignKey:FollowedID" json:"-"`
}

func (Relationship) TableName() string {
	return "relationships"
}
