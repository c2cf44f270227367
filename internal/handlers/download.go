package handlers

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

// DownloadHandler serves generated artifacts.
type DownloadHandler struct {
	outputDir string
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(outputDir string) *DownloadHandler {
	return &DownloadHandler{outputDir: outputDir}
}

// Handle streams one artifact as an attachment.
func (h *DownloadHandler) Handle(c *fiber.Ctx) error {
	filename, err := url.PathUnescape(c.Params("filename"))
	if err != nil || filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid filename",
		})
	}

	// Keep requests inside the output directory.
	filename = filepath.Base(filename)
	path := filepath.Join(h.outputDir, filename)

	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("File %s not found", filename),
		})
	}

	return c.Download(path, filename)
}
