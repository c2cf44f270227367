package handlers

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/podcast-content/internal/queue"
	"github.com/codebuildervaibhav/podcast-content/internal/storage"
	"github.com/codebuildervaibhav/podcast-content/internal/types"
	"github.com/codebuildervaibhav/podcast-content/internal/validate"
)

// UploadHandler accepts audio uploads and queues generation jobs.
type UploadHandler struct {
	workerPool *queue.WorkerPool
	store      *storage.JobStore
	tempDir    string
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(workerPool *queue.WorkerPool, store *storage.JobStore, tempDir string) *UploadHandler {
	return &UploadHandler{
		workerPool: workerPool,
		store:      store,
		tempDir:    tempDir,
	}
}

// Handle processes the upload request.
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	// Selecting nothing means everything, as the service defaults.
	selected, err := parseContentTypes(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := validate.Check(validate.FileInfo{Name: file.Filename, Size: file.Size}, selected); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, validate.ErrFileTooLarge) {
			status = fiber.StatusRequestEntityTooLarge
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("%s_%s", jobID, filepath.Base(file.Filename)))

	if err := c.SaveFile(file, tempPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	if err := h.store.Create(jobID, file.Filename); err != nil {
		log.Printf("Failed to register job %s: %v", jobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register job",
		})
	}

	h.workerPool.Enqueue(&queue.Job{
		ID:           jobID,
		Filename:     file.Filename,
		TempPath:     tempPath,
		ContentTypes: selected,
		Model:        c.FormValue("model"),
	})

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"message": "Audio file uploaded and processing started",
	})
}

// parseContentTypes reads the repeated content_types form fields, defaulting
// to the full set when none are sent.
func parseContentTypes(c *fiber.Ctx) ([]types.ContentType, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("invalid multipart form")
	}

	values := form.Value["content_types"]
	if len(values) == 0 {
		return types.AllContentTypes, nil
	}

	selected := make([]types.ContentType, 0, len(values))
	for _, v := range values {
		ct, ok := types.ParseContentType(v)
		if !ok {
			return nil, fmt.Errorf("unknown content type: %s", v)
		}
		selected = append(selected, ct)
	}
	return selected, nil
}
