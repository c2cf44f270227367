package types

// Job status values as reported by the service
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ContentType identifies one kind of generated output
type ContentType string

const (
	ContentBlog       ContentType = "blog"
	ContentSEO        ContentType = "seo"
	ContentFAQ        ContentType = "faq"
	ContentSocial     ContentType = "social"
	ContentNewsletter ContentType = "newsletter"
	ContentQuotes     ContentType = "quotes"
)

// AllContentTypes lists every selectable content type
var AllContentTypes = []ContentType{
	ContentBlog,
	ContentSEO,
	ContentFAQ,
	ContentSocial,
	ContentNewsletter,
	ContentQuotes,
}

// MaxUploadBytes is the upload size cap enforced before any network call
const MaxUploadBytes = 20 * 1024 * 1024

// AllowedExtensions lists supported audio file extensions (lowercase)
var AllowedExtensions = []string{".mp3", ".wav", ".m4a", ".ogg"}

// UploadRequest carries everything needed for one submission.
// Built at submit time and discarded once the request is sent.
type UploadRequest struct {
	Path         string
	Name         string
	Size         int64
	ContentTypes []ContentType
	Model        string
}

// Job is the client-side view of a server-side job. It is only ever
// replaced wholesale by the latest status response, never patched.
type Job struct {
	ID       string            `json:"job_id"`
	Status   string            `json:"status"`
	Filename string            `json:"filename,omitempty"`
	Error    string            `json:"error,omitempty"`
	Files    map[string]string `json:"files,omitempty"`
}

// IsTerminal reports whether a status ends polling.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ParseContentType validates a single content type string.
func ParseContentType(s string) (ContentType, bool) {
	for _, ct := range AllContentTypes {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}
