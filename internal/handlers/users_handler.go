package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/middleware"
	"github.com/microblog-app/backend/internal/models"
	"github.com/microblog-app/backend/internal/services"
)

type UsersHandler struct {
	users         *services.UserService
	relationships *services.RelationshipService
}

func NewUsersHandler(users *services.UserService, relationships *services.RelationshipService) *UsersHandler {
	return &UsersHandler{users: users, relationships: relationships}
}

// Create handles signup. The account starts unactivated; the activation link
// goes out by email, so the response is a generic "check your email".
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.Create(&req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(), Messages: verr.Messages(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Please check your email to activate your account",
		"user":    h.userResponse(user),
	})
}

func (h *UsersHandler) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	user, err := h.users.Find(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Not found",
			})
		}
		return err
	}

	return c.JSON(h.userResponse(user))
}

func (h *UsersHandler) Index(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 30)
	offset := c.QueryInt("offset", 0)

	users, total, err := h.users.List(limit, offset)
	if err != nil {
		return err
	}

	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = h.userResponse(&users[i])
	}
	return c.JSON(fiber.Map{"users": resp, "total": total})
}

// Update lets a user change their own profile. Admin cannot touch other
// accounts through this path and the admin flag is never assignable.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil || current.ID != id {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.Update(id, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(), Messages: verr.Messages(),
			})
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Not found",
			})
		}
		return err
	}

	return c.JSON(h.userResponse(user))
}

// Destroy is admin-only (enforced by middleware) and cascades to follow
// edges and microposts.
func (h *UsersHandler) Destroy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if err := h.users.Destroy(id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Not found",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}

func (h *UsersHandler) Following(c *fiber.Ctx) error {
	return h.listRelated(c, h.relationships.Following)
}

func (h *UsersHandler) Followers(c *fiber.Ctx) error {
	return h.listRelated(c, h.relationships.Followers)
}

func (h *UsersHandler) listRelated(c *fiber.Ctx, list func(uuid.UUID, int, int) ([]models.User, error)) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	if _, err := h.users.Find(id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Not found",
			})
		}
		return err
	}

	users, err := list(id, c.QueryInt("limit", 30), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = h.userResponse(&users[i])
	}
	return c.JSON(fiber.Map{"users": resp})
}

func (h *UsersHandler) userResponse(user *models.User) dto.UserResponse {
	following, _ := h.relationships.FollowingCount(user.ID)
	followers, _ := h.relationships.FollowersCount(user.ID)
	return dto.UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Admin:          user.Admin,
		Activated:      user.Activated,
		CreatedAt:      user.CreatedAt,
		FollowingCount: following,
		FollowersCount: followers,
	}
}
