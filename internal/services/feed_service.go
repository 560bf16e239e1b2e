package services

import (
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/models"
	"gorm.io/gorm"
)

// FeedService assembles a user's timeline: their own microposts plus those of
// everyone they follow.
type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Feed returns the timeline newest-first as one query, so pagination stays
// consistent instead of merging per-followed-user sub-results. The secondary
// id ordering keeps equal timestamps stable within a query.
func (s *FeedService) Feed(userID uuid.UUID, limit, offset int) ([]models.Micropost, error) {
	var posts []models.Micropost
	err := s.db.
		Where("user_id IN (SELECT followed_id FROM relationships WHERE follower_id = ?) OR user_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

// FeedCount returns the total number of timeline entries for pagination.
func (s *FeedService) FeedCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Micropost{}).
		Where("user_id IN (SELECT followed_id FROM relationships WHERE follower_id = ?) OR user_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}
