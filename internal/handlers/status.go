package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/podcast-content/internal/storage"
	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

// StatusHandler reports job state to polling clients.
type StatusHandler struct {
	store *storage.JobStore
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(store *storage.JobStore) *StatusHandler {
	return &StatusHandler{store: store}
}

// Handle returns the status payload for one job.
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	jobID := c.Params("job_id")

	job, err := h.store.Get(jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Job ID %s not found", jobID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job",
		})
	}

	switch job.Status {
	case types.StatusCompleted:
		return c.JSON(fiber.Map{
			"status": job.Status,
			"files":  job.Files,
		})
	case types.StatusFailed:
		return c.JSON(fiber.Map{
			"status": job.Status,
			"error":  job.Error,
		})
	default:
		return c.JSON(fiber.Map{
			"status":   job.Status,
			"filename": job.Filename,
		})
	}
}
