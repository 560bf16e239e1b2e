package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/microblog-app/backend/internal/dto"
)

// AdminRequired gates destructive routes on the account's admin flag. It must
// run after CurrentUser.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Please log in",
			})
		}
		if !user.Admin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}
