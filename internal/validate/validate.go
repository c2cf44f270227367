package validate

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

// Validation failures, in check order. Each maps to one user-facing message.
var (
	ErrNoFile          = errors.New("no file selected")
	ErrFileTooLarge    = errors.New("file size exceeds the 20MB limit")
	ErrUnsupportedType = errors.New("only audio files (.mp3, .wav, .m4a, .ogg) are supported")
	ErrNoContentTypes  = errors.New("no content type selected")
)

// FileInfo is the minimal file description the validator needs.
type FileInfo struct {
	Name string
	Size int64
}

// Check runs the pre-submission gate. Checks run in a fixed order and
// stop at the first failure. No side effects.
func Check(file FileInfo, selected []types.ContentType) error {
	if file.Name == "" {
		return ErrNoFile
	}
	if file.Size > types.MaxUploadBytes {
		return ErrFileTooLarge
	}
	if !supportedExtension(file.Name) {
		return ErrUnsupportedType
	}
	if len(selected) == 0 {
		return ErrNoContentTypes
	}
	return nil
}

// supportedExtension matches the filename extension, case-insensitively,
// against the audio allowlist.
func supportedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range types.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
