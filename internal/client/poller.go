package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

const (
	// DefaultInterval is the delay between status checks.
	DefaultInterval = 5 * time.Second
	// DefaultBudget is how many consecutive failed status checks are
	// tolerated before the poll is declared timed out.
	DefaultBudget = 60
)

// genericFailureMessage is used when the service reports a failed job
// without an error detail.
const genericFailureMessage = "Processing failed. Please try again."

// Callbacks receive poll outcomes. Exactly one of OnComplete, OnFailure or
// OnTimeout fires per poll, after which no further callback is invoked.
// Nil callbacks are skipped.
type Callbacks struct {
	OnUpdate   func(filename string)
	OnComplete func(files map[string]string)
	OnFailure  func(message string)
	OnTimeout  func()
}

// Poller watches jobs until they reach a terminal state.
type Poller struct {
	client *Client

	// Interval between status checks.
	Interval time.Duration
	// Budget is the consecutive-failure allowance. A successful check
	// resets the count; only request failures spend it.
	Budget int
	// MaxWait, when non-zero, caps the total poll duration regardless of
	// failures. Zero means a job may stay processing indefinitely as long
	// as status checks keep succeeding.
	MaxWait time.Duration
}

// NewPoller creates a poller with default interval and budget.
func NewPoller(c *Client) *Poller {
	return &Poller{
		client:   c,
		Interval: DefaultInterval,
		Budget:   DefaultBudget,
	}
}

// Handle controls one running poll loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the loop and waits for it to exit. Once Cancel returns no
// further callback will fire. Safe to call more than once.
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
}

// Done is closed when the loop has exited, whether by terminal status,
// timeout or cancellation.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poll starts watching jobID. The first status check is issued immediately,
// then every Interval. Checks are serialized: the next request is not sent
// until the previous one has resolved, so the latest processed response is
// always the most recent one.
func (p *Poller) Poll(jobID string, cb Callbacks) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go p.loop(ctx, jobID, cb, h)
	return h
}

func (p *Poller) loop(ctx context.Context, jobID string, cb Callbacks, h *Handle) {
	defer close(h.done)
	defer h.cancel()

	var deadline time.Time
	if p.MaxWait > 0 {
		deadline = time.Now().Add(p.MaxWait)
	}

	failures := 0
	for {
		job, err := p.client.Status(ctx, jobID)
		if ctx.Err() != nil {
			// cancelled mid-request; do not report the outcome
			return
		}

		if err != nil {
			failures++
			slog.Debug("status check failed", "job_id", jobID, "failures", failures, "err", err)
			if failures >= p.Budget {
				invokeTimeout(cb)
				return
			}
		} else {
			failures = 0
			switch job.Status {
			case types.StatusCompleted:
				if cb.OnComplete != nil {
					cb.OnComplete(job.Files)
				}
				return
			case types.StatusFailed:
				msg := job.Error
				if msg == "" {
					msg = genericFailureMessage
				}
				if cb.OnFailure != nil {
					cb.OnFailure(msg)
				}
				return
			default:
				if cb.OnUpdate != nil {
					cb.OnUpdate(job.Filename)
				}
			}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			invokeTimeout(cb)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

func invokeTimeout(cb Callbacks) {
	if cb.OnTimeout != nil {
		cb.OnTimeout()
	}
}
