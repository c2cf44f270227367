package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceServer replies with a scripted list of responses, repeating the
// last one once the script runs out.
type sequenceServer struct {
	mu        sync.Mutex
	responses []scriptedResponse
	requests  int
}

type scriptedResponse struct {
	status int
	body   string
}

func (s *sequenceServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.requests
	s.requests++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	res := s.responses[i]
	s.mu.Unlock()

	if res.status != 0 {
		w.WriteHeader(res.status)
	}
	w.Write([]byte(res.body))
}

func (s *sequenceServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// events collects callback invocations for assertions.
type events struct {
	mu        sync.Mutex
	updates   []string
	completed []map[string]string
	failures  []string
	timeouts  int
}

func (e *events) callbacks() Callbacks {
	return Callbacks{
		OnUpdate: func(filename string) {
			e.mu.Lock()
			e.updates = append(e.updates, filename)
			e.mu.Unlock()
		},
		OnComplete: func(files map[string]string) {
			e.mu.Lock()
			e.completed = append(e.completed, files)
			e.mu.Unlock()
		},
		OnFailure: func(msg string) {
			e.mu.Lock()
			e.failures = append(e.failures, msg)
			e.mu.Unlock()
		},
		OnTimeout: func() {
			e.mu.Lock()
			e.timeouts++
			e.mu.Unlock()
		},
	}
}

func fastPoller(c *Client) *Poller {
	p := NewPoller(c)
	p.Interval = time.Millisecond
	return p
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop did not finish")
	}
}

func TestPollCompletes(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{body: `{"status": "processing", "filename": "episode1.mp3"}`},
		{body: `{"status": "processing", "filename": "episode1.mp3"}`},
		{body: `{"status": "completed", "files": {"abc_blog": "abc_blog.md", "abc_transcript": "abc_transcript.txt"}}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	ev := &events{}
	h := fastPoller(New(Config{BaseURL: srv.URL})).Poll("job-1", ev.callbacks())
	waitDone(t, h)

	assert.Equal(t, []string{"episode1.mp3", "episode1.mp3"}, ev.updates)
	require.Len(t, ev.completed, 1)
	assert.Equal(t, map[string]string{
		"abc_blog":       "abc_blog.md",
		"abc_transcript": "abc_transcript.txt",
	}, ev.completed[0])
	assert.Empty(t, ev.failures)
	assert.Zero(t, ev.timeouts)
	assert.Equal(t, 3, seq.requestCount(), "no request after the terminal status")
}

func TestPollJobFailure(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{body: `{"status": "failed", "error": "transcription backend unavailable"}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	ev := &events{}
	h := fastPoller(New(Config{BaseURL: srv.URL})).Poll("job-1", ev.callbacks())
	waitDone(t, h)

	assert.Equal(t, []string{"transcription backend unavailable"}, ev.failures)
	assert.Empty(t, ev.completed)
}

func TestPollJobFailureGenericMessage(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{body: `{"status": "failed"}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	ev := &events{}
	h := fastPoller(New(Config{BaseURL: srv.URL})).Poll("job-1", ev.callbacks())
	waitDone(t, h)

	require.Len(t, ev.failures, 1)
	assert.Equal(t, genericFailureMessage, ev.failures[0])
}

func TestPollTimeoutAfterBudget(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{status: http.StatusInternalServerError, body: `{"error": "boom"}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	p := fastPoller(New(Config{BaseURL: srv.URL}))
	p.Budget = 60

	ev := &events{}
	h := p.Poll("job-1", ev.callbacks())
	waitDone(t, h)

	assert.Equal(t, 1, ev.timeouts, "timeout fires exactly once")
	assert.Equal(t, 60, seq.requestCount(), "no request after budget exhaustion")
	assert.Empty(t, ev.updates)
	assert.Empty(t, ev.failures)
}

func TestPollNotFoundIsTransient(t *testing.T) {
	// A 404 from the status endpoint is not a terminal outcome: the job
	// may simply not be visible yet. The loop keeps going.
	seq := &sequenceServer{responses: []scriptedResponse{
		{status: http.StatusNotFound, body: `{"error": "Job ID job-1 not found"}`},
		{status: http.StatusNotFound, body: `{"error": "Job ID job-1 not found"}`},
		{body: `{"status": "completed", "files": {"job-1_blog": "job-1_blog.md"}}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	ev := &events{}
	h := fastPoller(New(Config{BaseURL: srv.URL})).Poll("job-1", ev.callbacks())
	waitDone(t, h)

	require.Len(t, ev.completed, 1)
	assert.Empty(t, ev.failures, "404 must not reach OnFailure")
	assert.Zero(t, ev.timeouts)
	assert.Equal(t, 3, seq.requestCount())
}

func TestPollNotFoundConsumesBudget(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{status: http.StatusNotFound, body: `{"error": "Job ID job-9 not found"}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	p := fastPoller(New(Config{BaseURL: srv.URL}))
	p.Budget = 4

	ev := &events{}
	h := p.Poll("job-9", ev.callbacks())
	waitDone(t, h)

	assert.Equal(t, 1, ev.timeouts)
	assert.Equal(t, 4, seq.requestCount(), "each 404 counts against the failure allowance")
	assert.Empty(t, ev.failures)
}

func TestPollSuccessResetsFailureCount(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{status: http.StatusInternalServerError},
		{status: http.StatusInternalServerError},
		{body: `{"status": "processing", "filename": "a.mp3"}`},
		{status: http.StatusInternalServerError},
		{status: http.StatusInternalServerError},
		{body: `{"status": "completed", "files": {"j_transcript": "j_transcript.md"}}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	p := fastPoller(New(Config{BaseURL: srv.URL}))
	p.Budget = 3

	ev := &events{}
	h := p.Poll("job-1", ev.callbacks())
	waitDone(t, h)

	// two failures, a success, two more failures: never three in a row
	assert.Zero(t, ev.timeouts)
	require.Len(t, ev.completed, 1)
}

func TestPollWallClockCap(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{body: `{"status": "processing", "filename": "a.mp3"}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	p := fastPoller(New(Config{BaseURL: srv.URL}))
	p.MaxWait = 20 * time.Millisecond

	ev := &events{}
	h := p.Poll("job-1", ev.callbacks())
	waitDone(t, h)

	assert.Equal(t, 1, ev.timeouts)
	assert.Empty(t, ev.completed)
}

func TestPollCancelStopsCallbacksAndRequests(t *testing.T) {
	seq := &sequenceServer{responses: []scriptedResponse{
		{body: `{"status": "processing", "filename": "a.mp3"}`},
	}}
	srv := httptest.NewServer(seq)
	defer srv.Close()

	var calls atomic.Int64
	p := fastPoller(New(Config{BaseURL: srv.URL}))
	p.Interval = 5 * time.Millisecond

	h := p.Poll("job-1", Callbacks{
		OnUpdate:   func(string) { calls.Add(1) },
		OnComplete: func(map[string]string) { calls.Add(1) },
		OnFailure:  func(string) { calls.Add(1) },
		OnTimeout:  func() { calls.Add(1) },
	})

	time.Sleep(12 * time.Millisecond)
	h.Cancel()

	after := calls.Load()
	requestsAfter := seq.requestCount()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, after, calls.Load(), "no callback after Cancel returns")
	assert.Equal(t, requestsAfter, seq.requestCount(), "no request after Cancel returns")

	// Cancel is idempotent
	h.Cancel()
}
