package models

import (
	"time"

	"github.com/google/uuid"
)

// Micropost is a short post owned by exactly one user. It is removed together
// with its owner.
type Micropost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string    `gorm:"size:140;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (Micropost) TableName() string {
	return "microposts"
}
