package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/microblog-app/backend/internal/handlers"
	"github.com/microblog-app/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	usersHandler *handlers.UsersHandler,
	sessionsHandler *handlers.SessionsHandler,
	activationsHandler *handlers.AccountActivationsHandler,
	resetsHandler *handlers.PasswordResetsHandler,
	relationshipsHandler *handlers.RelationshipsHandler,
	micropostsHandler *handlers.MicropostsHandler,
	feedHandler *handlers.FeedHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Credential endpoints get a stricter limit: 10 req/min per IP
	strict := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})

	// Signup, activation, sessions, password resets — public
	api.Post("/users", strict, usersHandler.Create)
	api.Get("/account_activations/:token", activationsHandler.Edit)
	api.Post("/sessions", strict, sessionsHandler.Create)
	api.Delete("/sessions", sessionsHandler.Destroy)
	api.Post("/password_resets", strict, resetsHandler.Create)
	api.Get("/password_resets/:token", resetsHandler.Edit)
	api.Patch("/password_resets/:token", strict, resetsHandler.Update)

	// Profiles and listings — login required
	loggedIn := middleware.LoginRequired()
	api.Get("/users", loggedIn, usersHandler.Index)
	api.Get("/users/:id", usersHandler.Show)
	api.Patch("/users/:id", loggedIn, usersHandler.Update)
	api.Delete("/users/:id", middleware.AdminRequired(), usersHandler.Destroy)
	api.Get("/users/:id/following", usersHandler.Following)
	api.Get("/users/:id/followers", usersHandler.Followers)

	// Social graph and content — login required
	api.Post("/relationships", loggedIn, relationshipsHandler.Create)
	api.Delete("/relationships/:followed_id", loggedIn, relationshipsHandler.Destroy)
	api.Post("/microposts", loggedIn, micropostsHandler.Create)
	api.Delete("/microposts/:id", loggedIn, micropostsHandler.Destroy)
	api.Get("/feed", loggedIn, feedHandler.Index)
}
