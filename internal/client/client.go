package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

const (
	uploadPath   = "/api/upload"
	statusPath   = "/api/status/"
	downloadPath = "/api/download/"
)

// genericUploadError is shown when the service rejects an upload without
// a usable error body.
const genericUploadError = "Error uploading file"

// ErrMalformedReply indicates a 2xx response whose body did not carry the
// expected fields.
var ErrMalformedReply = errors.New("malformed service reply")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service error (status %d): %s", e.Status, e.Message)
}

// Client talks to the podcast content service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config configures a Client.
type Config struct {
	// BaseURL is the service root, e.g. http://localhost:8000
	BaseURL string
	// HTTPClient is optional and defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// New creates a service client.
func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
	}
}

// Upload submits an audio file plus content type selection and returns the
// assigned job ID. Exactly one request is issued; there are no retries at
// this layer.
func (c *Client) Upload(ctx context.Context, req types.UploadRequest) (string, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", req.Name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	for _, ct := range req.ContentTypes {
		if err := writer.WriteField("content_types", string(ct)); err != nil {
			return "", err
		}
	}
	if req.Model != "" {
		if err := writer.WriteField("model", req.Model); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &APIError{Status: res.StatusCode, Message: errorMessage(resBody, genericUploadError)}
	}

	var reply struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(resBody, &reply); err != nil || reply.JobID == "" {
		return "", fmt.Errorf("%w: missing job_id", ErrMalformedReply)
	}
	return reply.JobID, nil
}

// Status fetches the current state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (types.Job, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath+url.PathEscape(jobID), nil)
	if err != nil {
		return types.Job{}, err
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return types.Job{}, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return types.Job{}, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return types.Job{}, &APIError{Status: res.StatusCode, Message: errorMessage(resBody, "status check failed")}
	}

	var job types.Job
	if err := json.Unmarshal(resBody, &job); err != nil {
		return types.Job{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	job.ID = jobID
	return job, nil
}

// DownloadURL returns the fixed download location for an artifact.
func (c *Client) DownloadURL(filename string) string {
	return c.baseURL + downloadPath + url.PathEscape(filename)
}

// Download fetches one artifact into destDir and returns the written path.
func (c *Client) Download(ctx context.Context, filename, destDir string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(filename), nil)
	if err != nil {
		return "", err
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		resBody, _ := io.ReadAll(res.Body)
		return "", &APIError{Status: res.StatusCode, Message: errorMessage(resBody, "download failed")}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	destPath := filepath.Join(destDir, filepath.Base(filename))

	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, res.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return destPath, nil
}

// errorMessage extracts the service "error" field from a response body,
// falling back when the body is unparsable or empty.
func errorMessage(body []byte, fallback string) string {
	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &reply); err != nil || reply.Error == "" {
		return fallback
	}
	return reply.Error
}
