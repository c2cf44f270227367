package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

// ErrJobNotFound is returned when a job ID is unknown.
var ErrJobNotFound = errors.New("job not found")

// JobStore persists job state in SQLite so the dev server survives
// restarts mid-processing.
type JobStore struct {
	db *sql.DB
}

// NewJobStore opens (or creates) the job database.
func NewJobStore(dbPath string) (*JobStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS jobs (
		job_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		filename TEXT NOT NULL,
		error TEXT,
		files TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &JobStore{db: db}, nil
}

// Create registers a new job in processing state.
func (s *JobStore) Create(jobID, filename string) error {
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO jobs (job_id, status, filename, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, types.StatusProcessing, filename, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %v", err)
	}
	return nil
}

// Complete marks a job finished and records its artifact map.
func (s *JobStore) Complete(jobID string, files map[string]string) error {
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to marshal files: %v", err)
	}

	_, err = s.db.Exec(
		`UPDATE jobs SET status = ?, files = ?, updated_at = ? WHERE job_id = ?`,
		types.StatusCompleted, string(filesJSON), time.Now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %v", err)
	}
	return nil
}

// Fail marks a job failed with an error detail.
func (s *JobStore) Fail(jobID, errMsg string) error {
	_, err := s.db.Exec(
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE job_id = ?`,
		types.StatusFailed, errMsg, time.Now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %v", err)
	}
	return nil
}

// Get returns the current state of a job.
func (s *JobStore) Get(jobID string) (types.Job, error) {
	row := s.db.QueryRow(
		`SELECT job_id, status, filename, error, files FROM jobs WHERE job_id = ?`,
		jobID,
	)

	var (
		job       types.Job
		errDetail sql.NullString
		filesJSON sql.NullString
	)
	if err := row.Scan(&job.ID, &job.Status, &job.Filename, &errDetail, &filesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrJobNotFound
		}
		return types.Job{}, fmt.Errorf("failed to get job: %v", err)
	}

	job.Error = errDetail.String
	if filesJSON.Valid && filesJSON.String != "" {
		if err := json.Unmarshal([]byte(filesJSON.String), &job.Files); err != nil {
			return types.Job{}, fmt.Errorf("failed to unmarshal files: %v", err)
		}
	}
	return job, nil
}

// Close closes the database connection.
func (s *JobStore) Close() error {
	return s.db.Close()
}
