package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipService manages the directed follow graph between users.
type RelationshipService struct {
	db *gorm.DB
}

func NewRelationshipService(db *gorm.DB) *RelationshipService {
	return &RelationshipService{db: db}
}

// Follow creates the edge follower -> followed. Self-follow is a silent
// no-op, and following twice leaves exactly one edge: the insert is an upsert
// keyed by the (follower_id, followed_id) unique index, so concurrent calls
// cannot produce duplicates.
func (s *RelationshipService) Follow(followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return nil
	}
	edge := models.Relationship{
		ID:         uuid.New(),
		FollowerID: followerID,
		FollowedID: followedID,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
		DoNothing: true,
	}).Create(&edge).Error
	if err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

// Unfollow deletes the edge if present; deleting a missing edge is a no-op.
func (s *RelationshipService) Unfollow(followerID, followedID uuid.UUID) error {
	err := s.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Relationship{}).Error
	if err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}

func (s *RelationshipService) IsFollowing(followerID, followedID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (s *RelationshipService) FollowingCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Relationship{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *RelationshipService) FollowersCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Relationship{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

// Following lists the users userID follows, most recent follow first.
func (s *RelationshipService) Following(userID uuid.UUID, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN relationships ON relationships.followed_id = users.id").
		Where("relationships.follower_id = ?", userID).
		Order("relationships.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}

// Followers lists the users following userID, most recent follow first.
func (s *RelationshipService) Followers(userID uuid.UUID, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN relationships ON relationships.follower_id = users.id").
		Where("relationships.followed_id = ?", userID).
		Order("relationships.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}
