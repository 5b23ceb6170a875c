// Package app assembles the Fiber application.
package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/resumeforge/forge/internal/api/middleware"
	"github.com/resumeforge/forge/internal/api/v1/handlers"
	v1 "github.com/resumeforge/forge/internal/api/v1/routes"
)

// New builds the Fiber app with middleware and versioned routes. CORS is
// permissive: submissions come from a browser extension running on
// arbitrary origins.
func New(jobHandler *handlers.JobHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(middleware.Logger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1.Register(app, jobHandler)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(handlers.ErrorResponse{Error: err.Error()})
}
