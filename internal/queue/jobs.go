package queue

import (
	"time"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

// Job is one unit of queued content generation work.
type Job struct {
	ID           string
	Filename     string
	TempPath     string
	ContentTypes []types.ContentType
	Model        string
	CreatedAt    time.Time
}
