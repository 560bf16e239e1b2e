package services

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrMicropostNotFound = errors.New("micropost not found")
	// ErrNotPostOwner guards deletion: only the author or an admin may
	// remove a micropost.
	ErrNotPostOwner = errors.New("not the micropost owner")
)

const contentMaxLength = 140

// MicropostService handles authoring. Attachments are out of scope.
type MicropostService struct {
	db *gorm.DB
}

func NewMicropostService(db *gorm.DB) *MicropostService {
	return &MicropostService{db: db}
}

func (s *MicropostService) Create(userID uuid.UUID, content string) (*models.Micropost, error) {
	fe := newFieldErrors()
	fe.check("content", content,
		validation.By(notBlank),
		validation.RuneLength(0, contentMaxLength).Error(fmt.Sprintf("is too long (maximum is %d characters)", contentMaxLength)),
	)
	if err := fe.result(); err != nil {
		return nil, err
	}

	post := &models.Micropost{
		ID:      uuid.New(),
		UserID:  userID,
		Content: content,
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create micropost: %w", err)
	}
	return post, nil
}

func (s *MicropostService) Delete(id uuid.UUID, actor *models.User) error {
	var post models.Micropost
	if err := s.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMicropostNotFound
		}
		return err
	}
	if post.UserID != actor.ID && !actor.Admin {
		return ErrNotPostOwner
	}
	return s.db.Delete(&post).Error
}

// ListByUser returns a user's own microposts newest-first.
func (s *MicropostService) ListByUser(userID uuid.UUID, limit, offset int) ([]models.Micropost, error) {
	var posts []models.Micropost
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}
