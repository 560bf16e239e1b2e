package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/models"
	"github.com/microblog-app/backend/internal/services"
)

type AccountActivationsHandler struct {
	users *services.UserService
}

func NewAccountActivationsHandler(users *services.UserService) *AccountActivationsHandler {
	return &AccountActivationsHandler{users: users}
}

// Edit consumes the emailed activation link: the token must match the
// activation digest of the account behind the email. Activating an already
// active account is rejected so stale links cannot be replayed as proof.
func (h *AccountActivationsHandler) Edit(c *fiber.Ctx) error {
	token := c.Params("token")
	email := c.Query("email")

	user, err := h.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return invalidActivation(c)
		}
		return err
	}

	if user.Activated || !h.users.Authenticated(user, models.DigestActivation, token) {
		return invalidActivation(c)
	}

	if err := h.users.Activate(user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Account activated", "user_id": user.ID})
}

func invalidActivation(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid activation link",
	})
}
