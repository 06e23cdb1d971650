package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/essayq-go-api/internal/config"
	"github.com/noah-isme/essayq-go-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuestionHandler *handler.QuestionHandler
	EssayHandler    *handler.EssayHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Student surface: per-question state and essay submission
	if deps.EssayHandler != nil {
		questions := api.Group("/questions", jwtMiddleware)
		deps.EssayHandler.Register(questions)
	}

	// Author surface: question configuration editor
	if deps.QuestionHandler != nil {
		author := api.Group("/author/questions", jwtMiddleware)
		deps.QuestionHandler.Register(author)
	}
}
