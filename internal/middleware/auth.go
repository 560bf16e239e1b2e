package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/models"
	"github.com/microblog-app/backend/internal/services"
)

const (
	// CookieUserID and CookieRememberToken form the persistent-session pair:
	// the id locates the account, the token must match its remember digest.
	CookieUserID        = "user_id"
	CookieRememberToken = "remember_token"

	currentUserKey = "current_user"
)

// CurrentUser resolves the logged-in user from the session cookie pair, if
// any, and stashes it in locals. It never rejects a request by itself.
func CurrentUser(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idCookie := c.Cookies(CookieUserID)
		token := c.Cookies(CookieRememberToken)
		if idCookie == "" || token == "" {
			return c.Next()
		}

		id, err := uuid.Parse(idCookie)
		if err != nil {
			return c.Next()
		}

		user, err := sessions.ResolveFromRememberToken(id, token)
		if err != nil {
			return err
		}
		if user != nil {
			c.Locals(currentUserKey, user)
		}
		return c.Next()
	}
}

// LoginRequired rejects requests without a resolved current user.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetCurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Please log in",
			})
		}
		return c.Next()
	}
}

// GetCurrentUser returns the user resolved by CurrentUser, or nil.
func GetCurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

// SetSessionCookies writes the persistent-session pair. A zero maxAge makes
// them session cookies (cleared when the browser closes).
func SetSessionCookies(c *fiber.Ctx, user *models.User, token string, maxAge time.Duration) {
	expires := time.Time{}
	if maxAge > 0 {
		expires = time.Now().Add(maxAge)
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieUserID,
		Value:    user.ID.String(),
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     CookieRememberToken,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookies removes the persistent-session pair.
func ClearSessionCookies(c *fiber.Ctx) {
	c.ClearCookie(CookieUserID, CookieRememberToken)
}
