package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

// writeAudioFixture drops a small fake audio file into a temp dir.
func writeAudioFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))
	return path
}

func uploadRequest(t *testing.T, name string) types.UploadRequest {
	t.Helper()
	path := writeAudioFixture(t, name)
	return types.UploadRequest{
		Path:         path,
		Name:         name,
		Size:         16,
		ContentTypes: []types.ContentType{types.ContentBlog, types.ContentSEO},
	}
}

func TestUploadSendsMultipartFields(t *testing.T) {
	var gotTypes []string
	var gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotTypes = r.MultipartForm.Value["content_types"]
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		file.Close()
		gotFilename = header.Filename

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id": "job-42", "message": "processing started"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	jobID, err := c.Upload(context.Background(), uploadRequest(t, "episode1.mp3"))

	require.NoError(t, err)
	assert.Equal(t, "job-42", jobID)
	assert.Equal(t, "episode1.mp3", gotFilename)
	assert.Equal(t, []string{"blog", "seo"}, gotTypes)
}

func TestUploadServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "File size exceeds the 20MB limit"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Upload(context.Background(), uploadRequest(t, "episode1.mp3"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "File size exceeds the 20MB limit", apiErr.Message)
}

func TestUploadUnparsableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Upload(context.Background(), uploadRequest(t, "episode1.mp3"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Error uploading file", apiErr.Message)
}

func TestUploadMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Upload(context.Background(), uploadRequest(t, "episode1.mp3"))
	assert.ErrorIs(t, err, ErrMalformedReply)
}

func TestUploadIssuesExactlyOneRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Upload(context.Background(), uploadRequest(t, "episode1.mp3"))

	require.Error(t, err)
	assert.Equal(t, 1, requests, "upload must not retry")
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status/job-42", r.URL.Path)
		w.Write([]byte(`{"status": "processing", "filename": "episode1.mp3"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	job, err := c.Status(context.Background(), "job-42")

	require.NoError(t, err)
	assert.Equal(t, "job-42", job.ID)
	assert.Equal(t, types.StatusProcessing, job.Status)
	assert.Equal(t, "episode1.mp3", job.Filename)
}

func TestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "Job ID job-42 not found"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Status(context.Background(), "job-42")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/download/abc_blog.md", r.URL.Path)
		w.Write([]byte("# Blog Post\n"))
	}))
	defer srv.Close()

	destDir := t.TempDir()
	c := New(Config{BaseURL: srv.URL})
	path, err := c.Download(context.Background(), "abc_blog.md", destDir)

	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Blog Post\n", string(content))
	assert.Equal(t, filepath.Join(destDir, "abc_blog.md"), path)
}

func TestDownloadURL(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:8000/"})
	assert.Equal(t, "http://localhost:8000/api/download/abc_blog.md", c.DownloadURL("abc_blog.md"))
}

func TestUploadMissingLocalFile(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:1"})
	_, err := c.Upload(context.Background(), types.UploadRequest{
		Path: filepath.Join(t.TempDir(), "absent.mp3"),
		Name: "absent.mp3",
	})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
