// Package routes wires the v1 API endpoints to their handlers.
package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resumeforge/forge/internal/api/v1/handlers"
)

// DefaultBaseURL is the default address of the API server
const DefaultBaseURL = "http://localhost:8080"

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, jobHandler *handlers.JobHandler) {
	jobs := router.Group("/jobs")
	jobs.Post("/", jobHandler.SubmitJob)
	jobs.Get("/", jobHandler.ListJobs)
	jobs.Get("/:id", jobHandler.GetJob)
}

// Register registers the v1 routes
func Register(app *fiber.App, jobHandler *handlers.JobHandler) {
	v1Group := app.Group("/api/v1")
	SetupRoutes(v1Group, jobHandler)
}
