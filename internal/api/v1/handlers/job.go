// Package handlers implements the HTTP surface of the job API.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/resumeforge/forge/internal/db/models"
	"github.com/resumeforge/forge/internal/db/repos"
	"github.com/resumeforge/forge/internal/services"
)

// JobHandler handles HTTP requests for job operations
type JobHandler struct {
	service *services.JobService
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(s *services.JobService) *JobHandler {
	return &JobHandler{service: s}
}

// SubmitJob handles the request to submit a captured job posting. The only
// failures a submitter ever sees synchronously are validation failures;
// everything downstream is visible by polling the record.
func (h *JobHandler) SubmitJob(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse{Error: "invalid request body"})
	}

	job, err := h.service.Submit(c.Context(), req.URL, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(ResultResponse{Result: job.UID})
}

// GetJob handles the request to read a single job record
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	uid := c.Params("id")
	if uid == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse{Error: "invalid job id"})
	}

	job, err := h.service.Get(c.Context(), uid)
	if err != nil {
		if errors.Is(err, repos.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(ErrorResponse{Error: "job not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(job)
}

// ListJobs handles the request to list jobs
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	var (
		limit  = c.QueryInt("limit", models.DefaultLimit)
		offset = c.QueryInt("offset", 0)
		status = models.JobStatusUnknown
	)

	if statusStr := c.Query("status"); statusStr != "" {
		parsed, err := models.ParseJobStatus(statusStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse{Error: "invalid job status"})
		}
		status = parsed
	}

	jobs, err := h.service.List(c.Context(), status, &models.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse{Error: err.Error()})
	}

	count, err := h.service.Count(c.Context(), status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(ListResponse{Jobs: jobs, Count: count})
}
