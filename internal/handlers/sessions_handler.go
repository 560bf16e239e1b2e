package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/microblog-app/backend/internal/config"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/middleware"
	"github.com/microblog-app/backend/internal/services"
)

type SessionsHandler struct {
	sessions *services.SessionService
	users    *services.UserService
	cfg      *config.Config
}

func NewSessionsHandler(sessions *services.SessionService, users *services.UserService, cfg *config.Config) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, users: users, cfg: cfg}
}

// Create logs a user in and establishes the cookie session pair. With
// remember_me the cookies persist for the configured lifetime; otherwise
// they last for the browser session only. Unactivated accounts are refused.
func (h *SessionsHandler) Create(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.sessions.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid email/password combination",
			})
		}
		return err
	}

	if !user.Activated {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Account not activated. Check your email for the activation link.",
		})
	}

	token, err := h.users.Remember(user)
	if err != nil {
		return err
	}

	maxAge := h.cfg.RememberExpiry
	if !req.RememberMe {
		maxAge = 0
	}
	middleware.SetSessionCookies(c, user, token, maxAge)

	return c.JSON(fiber.Map{"message": "Logged in", "user_id": user.ID})
}

// Destroy logs out: the remember digest is dropped server-side and the
// cookies cleared.
func (h *SessionsHandler) Destroy(c *fiber.Ctx) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		if err := h.sessions.Logout(user); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
