// Package client provides a client-side vote submission queue that mirrors
// the server's identifier classification.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hoofmatch/hoofmatch/identity"
)

const (
	maxAttempts  = 3
	backoffUnit  = 800 * time.Millisecond
	queueBacklog = 256
)

// Profile is a vote target as the UI knows it: an optional server-assigned
// identifier plus the display name.
type Profile struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// APIError is a vote submission failure reported by the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vote request failed (%d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the server signalled a transient failure. Only
// server-side errors qualify; rate limiting and validation failures must
// surface immediately without consuming the retry budget.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

type voteJob struct {
	target    string
	direction string
	done      chan error
}

// VoteQueue submits votes strictly one at a time, in call order. A single
// worker goroutine consumes a FIFO channel, so submissions are never
// concurrent or reordered even when callers fire without awaiting. A terminal
// failure of one job never blocks the jobs queued after it.
type VoteQueue struct {
	baseURL string
	httpc   *http.Client
	jobs    chan *voteJob
	sleep   func(time.Duration)

	mu      sync.Mutex
	pending int
	lastErr error

	closeOnce sync.Once
	doneCh    chan struct{}
}

// NewVoteQueue creates a vote queue targeting the API at baseURL. httpc may
// be nil to use a default client.
func NewVoteQueue(baseURL string, httpc *http.Client) *VoteQueue {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	q := &VoteQueue{
		baseURL: baseURL,
		httpc:   httpc,
		jobs:    make(chan *voteJob, queueBacklog),
		sleep:   time.Sleep,
		doneCh:  make(chan struct{}),
	}
	go q.worker()
	return q
}

// QueueVote enqueues a vote for profile and returns a channel that yields the
// terminal result (nil on success) and is then closed. The caller may discard
// the channel; queue health does not depend on it being read.
func (q *VoteQueue) QueueVote(profile Profile, liked bool) <-chan error {
	direction := "dislike"
	if liked {
		direction = "like"
	}

	job := &voteJob{
		target:    VoteTarget(profile),
		direction: direction,
		done:      make(chan error, 1),
	}

	q.mu.Lock()
	q.pending++
	q.mu.Unlock()

	q.jobs <- job
	return job.done
}

// Pending returns the number of votes queued or in flight
func (q *VoteQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// LastErr returns the most recent terminal failure, or nil
func (q *VoteQueue) LastErr() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Close stops the worker after draining already-queued votes. QueueVote must
// not be called after Close.
func (q *VoteQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
		<-q.doneCh
	})
}

func (q *VoteQueue) worker() {
	defer close(q.doneCh)
	for job := range q.jobs {
		err := q.submitWithRetry(job)

		q.mu.Lock()
		q.pending--
		if err != nil {
			q.lastErr = err
		}
		q.mu.Unlock()

		job.done <- err
		close(job.done)
	}
}

// submitWithRetry runs one vote to terminal success or terminal failure.
// Waits attempt*800ms between attempts; only retryable failures consume the
// budget.
func (q *VoteQueue) submitWithRetry(job *voteJob) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := q.submit(job)
		if err == nil {
			return nil
		}
		lastErr = err

		if apiErr, ok := err.(*APIError); ok && !apiErr.Retryable() {
			return err
		}
		if attempt < maxAttempts {
			q.sleep(time.Duration(attempt) * backoffUnit)
		}
	}
	return lastErr
}

func (q *VoteQueue) submit(job *voteJob) error {
	body, err := json.Marshal(map[string]string{"direction": job.direction})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/profiles/%s/vote", q.baseURL, job.target)
	resp, err := q.httpc.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		// Transport failures are treated as transient
		return fmt.Errorf("network error submitting vote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
	}
	return apiErr
}

// VoteTarget derives the path identifier for a profile: an explicit id that
// the server would accept wins, otherwise the seed hash of the display name.
// Classification goes through the same inference the server applies, so a
// profile is never addressed under two different keys.
func VoteTarget(p Profile) string {
	if p.ID != "" {
		if _, err := identity.Infer(p.ID, nil); err == nil {
			return p.ID
		}
	}
	return identity.HashName(p.Name)
}
