package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

func TestExportToDriveSkipsWithoutCredentials(t *testing.T) {
	cfg := defaultConfig()
	cfg.GoogleDrive.CredentialsFile = filepath.Join(t.TempDir(), "credentials.json")

	// The artifacts were already downloaded; a missing credentials file
	// must not turn that success into a failed run.
	err := exportToDrive(context.Background(), cfg, []string{"downloads/a_blog.md"})
	assert.NoError(t, err)
}

func TestParseTypesCSV(t *testing.T) {
	selected, err := parseTypesCSV("blog, faq ,quotes")
	require.NoError(t, err)
	assert.Equal(t, []types.ContentType{types.ContentBlog, types.ContentFAQ, types.ContentQuotes}, selected)

	_, err = parseTypesCSV("blog,podcast")
	assert.Error(t, err)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Service.BaseURL)
	assert.Equal(t, 60, cfg.Poll.Budget)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("service:\n  base_url: http://10.0.0.5:9000\npoll:\n  interval_seconds: 2\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Service.BaseURL)
	assert.Equal(t, 2, cfg.Poll.IntervalSeconds)
	assert.Equal(t, 60, cfg.Poll.Budget, "unset keys keep defaults")
}
