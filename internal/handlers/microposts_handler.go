package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/middleware"
	"github.com/microblog-app/backend/internal/services"
)

type MicropostsHandler struct {
	microposts *services.MicropostService
}

func NewMicropostsHandler(microposts *services.MicropostService) *MicropostsHandler {
	return &MicropostsHandler{microposts: microposts}
}

func (h *MicropostsHandler) Create(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	var req dto.CreateMicropostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	post, err := h.microposts.Create(current.ID, req.Content)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(), Messages: verr.Messages(),
			})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MicropostResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	})
}

func (h *MicropostsHandler) Destroy(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid micropost id",
		})
	}

	if err := h.microposts.Delete(id, current); err != nil {
		switch {
		case errors.Is(err, services.ErrMicropostNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Not found",
			})
		case errors.Is(err, services.ErrNotPostOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Forbidden",
			})
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{"message": "Micropost deleted"})
}
