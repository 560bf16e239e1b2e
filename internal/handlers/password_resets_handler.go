package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/services"
)

type PasswordResetsHandler struct {
	resets *services.PasswordResetService
}

func NewPasswordResetsHandler(resets *services.PasswordResetService) *PasswordResetsHandler {
	return &PasswordResetsHandler{resets: resets}
}

// Create requests a reset link. The response is identical whether or not the
// email belongs to an account, so the endpoint cannot be used to enumerate
// registered addresses.
func (h *PasswordResetsHandler) Create(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.resets.Request(req.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "If that email address is registered, a password reset link has been sent",
	})
}

// Edit checks the emailed link before the user is shown the new-password
// form. An expired link gets its own message so the client routes the user
// to requesting a fresh one.
func (h *PasswordResetsHandler) Edit(c *fiber.Ctx) error {
	token := c.Params("token")
	email := c.Query("email")

	if _, err := h.resets.ValidateLink(email, token); err != nil {
		return resetFailure(c, err)
	}

	return c.JSON(fiber.Map{"message": "Reset link is valid"})
}

// Update consumes the link and sets the new password. The link is
// re-validated at submission time; success invalidates the token.
func (h *PasswordResetsHandler) Update(c *fiber.Ctx) error {
	token := c.Params("token")

	var req dto.PasswordResetUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	email := req.Email
	if email == "" {
		email = c.Query("email")
	}

	user, err := h.resets.Consume(email, token, req.Password, req.PasswordConfirmation)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: verr.Error(), Messages: verr.Messages(),
			})
		}
		return resetFailure(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password has been reset", "user_id": user.ID})
}

func resetFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrResetExpired):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "Password reset link has expired. Please request a new one.",
		})
	case errors.Is(err, services.ErrResetInvalid):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid password reset link",
		})
	default:
		return err
	}
}
