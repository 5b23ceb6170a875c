// Package middleware provides HTTP middleware shared by the API server.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/resumeforge/forge/internal/logger"
)

// Logger returns a middleware that logs HTTP requests
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.InfoWithFields("Request", map[string]interface{}{
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
			"method":  c.Method(),
			"path":    c.Path(),
		})

		return err
	}
}
