package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/middleware"
	"github.com/microblog-app/backend/internal/services"
)

type RelationshipsHandler struct {
	relationships *services.RelationshipService
	users         *services.UserService
}

func NewRelationshipsHandler(relationships *services.RelationshipService, users *services.UserService) *RelationshipsHandler {
	return &RelationshipsHandler{relationships: relationships, users: users}
}

// Create follows another user. Following someone already followed, or
// yourself, changes nothing.
func (h *RelationshipsHandler) Create(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	var req dto.FollowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	followed, err := h.users.Find(req.FollowedID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Not found",
			})
		}
		return err
	}

	if err := h.relationships.Follow(current.ID, followed.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Following", "followed_id": followed.ID})
}

// Destroy unfollows; unfollowing someone not followed is a no-op.
func (h *RelationshipsHandler) Destroy(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	followedID, err := uuid.Parse(c.Params("followed_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if err := h.relationships.Unfollow(current.ID, followedID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Unfollowed", "followed_id": followedID})
}
