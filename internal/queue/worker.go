package queue

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/codebuildervaibhav/podcast-content/internal/generate"
	"github.com/codebuildervaibhav/podcast-content/internal/storage"
)

// WorkerPool processes queued generation jobs in the background, the way
// the real service runs its pipeline off the request path.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	generator   *generate.Generator
	store       *storage.JobStore

	// ProcessingDelay simulates pipeline latency so clients actually
	// observe the processing state.
	ProcessingDelay time.Duration
}

// NewWorkerPool creates a worker pool over the given generator and store.
func NewWorkerPool(workerCount int, generator *generate.Generator, store *storage.JobStore) *WorkerPool {
	return &WorkerPool{
		jobQueue:    make(chan *Job, 100), // Buffer of 100 jobs
		workerCount: workerCount,
		generator:   generator,
		store:       store,
	}
}

// Start launches all workers.
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// Enqueue adds a job to the queue.
func (wp *WorkerPool) Enqueue(job *Job) {
	job.CreatedAt = time.Now()
	wp.jobQueue <- job
	log.Printf("Job %s enqueued (file: %s, types: %v)", job.ID, job.Filename, job.ContentTypes)
}

// worker processes jobs from the queue.
func (wp *WorkerPool) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		// Panic recovery
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.failJob(job, fmt.Sprintf("worker panic: %v", r))
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob runs the placeholder generation pipeline for one job.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Printf("Worker %d: Processing job %s", workerID, job.ID)

	if wp.ProcessingDelay > 0 {
		time.Sleep(wp.ProcessingDelay)
	}

	files, err := wp.generator.Generate(job.ID, job.Filename, job.ContentTypes)
	if err != nil {
		log.Printf("Worker %d: Generation failed for job %s: %v", workerID, job.ID, err)
		wp.failJob(job, err.Error())
		return
	}

	if err := wp.store.Complete(job.ID, files); err != nil {
		log.Printf("Worker %d: Failed to record completion for job %s: %v", workerID, job.ID, err)
		wp.failJob(job, err.Error())
		return
	}

	wp.cleanupTempFile(job.TempPath)
	log.Printf("Worker %d: Job %s completed (%d artifacts)", workerID, job.ID, len(files))
}

// failJob flips the job to failed and cleans up its upload.
func (wp *WorkerPool) failJob(job *Job, message string) {
	if err := wp.store.Fail(job.ID, message); err != nil {
		log.Printf("Failed to record failure for job %s: %v", job.ID, err)
	}
	wp.cleanupTempFile(job.TempPath)
}

// cleanupTempFile removes an uploaded temporary file.
func (wp *WorkerPool) cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to cleanup temp file %s: %v", filePath, err)
	}
}
