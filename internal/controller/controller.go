package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/codebuildervaibhav/podcast-content/internal/client"
	"github.com/codebuildervaibhav/podcast-content/internal/render"
	"github.com/codebuildervaibhav/podcast-content/internal/types"
	"github.com/codebuildervaibhav/podcast-content/internal/validate"
)

// genericTimeoutMessage is shown when the poll budget runs out.
const genericTimeoutMessage = "Processing timed out. Please try again."

// ErrNotInUploadState is returned when a submit is attempted while a job
// is already underway or results are still on screen.
var ErrNotInUploadState = errors.New("submit only allowed from upload state")

// State names one visible UI section. Exactly one is active at a time.
type State string

const (
	StateUpload     State = "upload"
	StateProcessing State = "processing"
	StateResults    State = "results"
	StateError      State = "error"
)

// View renders the section belonging to the current state. Every accepted
// transition produces exactly one Show call, so visibility mutual
// exclusion holds as long as the view switches sections on each call.
type View interface {
	ShowUpload()
	ShowProcessing(filename string)
	ShowResults(items []render.Item)
	ShowError(message string)
}

// Controller owns the job lifecycle: it gates submission through the
// validator, hands the upload to the service client, drives the poller and
// routes every outcome into a view transition.
type Controller struct {
	mu         sync.Mutex
	state      State
	job        types.Job
	handle     *client.Handle
	submitting bool

	svc    *client.Client
	poller *client.Poller
	view   View
}

// New creates a controller in upload state and shows the upload section.
func New(svc *client.Client, poller *client.Poller, view View) *Controller {
	c := &Controller{
		state:  StateUpload,
		svc:    svc,
		poller: poller,
		view:   view,
	}
	view.ShowUpload()
	return c
}

// State returns the currently visible section.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Job returns a snapshot of the tracked job.
func (c *Controller) Job() types.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

// Submit validates the request, uploads it and enters processing state.
// Validation or upload failure lands in error state; the returned error
// carries the same detail for callers that want an exit code.
func (c *Controller) Submit(ctx context.Context, req types.UploadRequest) error {
	c.mu.Lock()
	if c.state != StateUpload || c.submitting {
		c.mu.Unlock()
		return ErrNotInUploadState
	}
	// Claim the submission before releasing the lock for the upload, so a
	// concurrent Submit cannot pass the gate and POST the file twice.
	c.submitting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if err := validate.Check(validate.FileInfo{Name: req.Name, Size: req.Size}, req.ContentTypes); err != nil {
		c.fail(err.Error())
		return err
	}

	jobID, err := c.svc.Upload(ctx, req)
	if err != nil {
		c.fail(submitErrorMessage(err))
		return err
	}

	c.mu.Lock()
	if err := c.transition(StateProcessing); err != nil {
		c.mu.Unlock()
		return err
	}
	c.job = types.Job{ID: jobID, Status: types.StatusProcessing, Filename: req.Name}
	c.view.ShowProcessing(req.Name)
	c.handle = c.poller.Poll(jobID, client.Callbacks{
		OnUpdate:   c.onUpdate,
		OnComplete: c.onComplete,
		OnFailure:  c.onFailure,
		OnTimeout:  c.onTimeout,
	})
	c.mu.Unlock()
	return nil
}

// Wait blocks until the active poll loop has finished and its terminal
// outcome has been routed into the view. Returns immediately when no poll
// is running.
func (c *Controller) Wait() {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()
	if h != nil {
		<-h.Done()
	}
}

// Reset cancels any outstanding poll, discards the job and returns to
// upload state. Valid from results and error state, and also from
// processing as the user-initiated abort.
func (c *Controller) Reset() {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mu.Unlock()

	// Cancel outside the lock: the loop may be blocked dispatching a
	// callback that needs it.
	if h != nil {
		h.Cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUpload
	c.job = types.Job{}
	c.view.ShowUpload()
}

func (c *Controller) onUpdate(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateProcessing {
		return
	}
	if filename != "" {
		c.job.Filename = filename
	}
	c.view.ShowProcessing(c.job.Filename)
}

func (c *Controller) onComplete(files map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transition(StateResults) != nil {
		return
	}
	c.job.Status = types.StatusCompleted
	c.job.Files = files
	c.view.ShowResults(render.Items(files))
}

func (c *Controller) onFailure(message string) {
	c.fail(message)
}

func (c *Controller) onTimeout() {
	c.fail(genericTimeoutMessage)
}

// fail moves to error state from wherever the failure originated.
func (c *Controller) fail(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transition(StateError) != nil {
		return
	}
	c.job = types.Job{}
	c.view.ShowError(message)
}

// transition applies a state change after checking it against the allowed
// edges. Callers hold the mutex.
func (c *Controller) transition(to State) error {
	if !validTransition(c.state, to) {
		return fmt.Errorf("invalid transition: %s -> %s", c.state, to)
	}
	c.state = to
	return nil
}

// validTransition enforces the section state machine edges.
func validTransition(from, to State) bool {
	switch from {
	case StateUpload:
		return to == StateProcessing || to == StateError
	case StateProcessing:
		return to == StateResults || to == StateError
	case StateResults, StateError:
		return to == StateUpload
	default:
		return false
	}
}

// submitErrorMessage picks the user-facing text for an upload failure.
func submitErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Error uploading file"
}
