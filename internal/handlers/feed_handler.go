package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/middleware"
	"github.com/microblog-app/backend/internal/services"
)

type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Index returns the current user's timeline: their microposts plus those of
// everyone they follow, newest first.
func (h *FeedHandler) Index(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	limit := c.QueryInt("limit", 30)
	offset := c.QueryInt("offset", 0)

	posts, err := h.feed.Feed(current.ID, limit, offset)
	if err != nil {
		return err
	}
	total, err := h.feed.FeedCount(current.ID)
	if err != nil {
		return err
	}

	resp := make([]dto.MicropostResponse, len(posts))
	for i, p := range posts {
		resp[i] = dto.MicropostResponse{
			ID:        p.ID,
			UserID:    p.UserID,
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
		}
	}
	return c.JSON(fiber.Map{"microposts": resp, "total": total})
}
