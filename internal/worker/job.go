package worker

import (
	"context"
	"sync"
	"time"

	"crm/internal/domain"
)

type JobState string

const (
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
)

type JobStatus struct {
	ID         string     `json:"id"`
	State      JobState   `json:"state"`
	Total      int        `json:"total"`
	Sent       int        `json:"sent"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Job is the handle for one running broadcast. The dispatch result is always
// retrievable through Wait or Status, whether or not the caller blocks on it.
type Job struct {
	id     string
	total  int
	done   chan struct{}
	cancel context.CancelFunc

	mu       sync.Mutex
	status   JobStatus
	outcomes []domain.DispatchOutcome
}

// StartJob runs the broadcast on its own goroutine. ctx should outlive the
// HTTP request; cancelling it (process shutdown) ends the loop early.
func StartJob(ctx context.Context, d *Dispatcher, id, message string, recipients []domain.Recipient) *Job {
	runCtx, cancel := context.WithCancel(ctx)
	j := &Job{
		id:     id,
		total:  len(recipients),
		done:   make(chan struct{}),
		cancel: cancel,
		status: JobStatus{ID: id, State: JobRunning, Total: len(recipients), StartedAt: time.Now().UTC()},
	}

	go func() {
		defer close(j.done)
		defer cancel()
		outcomes := d.Run(runCtx, id, message, recipients, j.observe)

		j.mu.Lock()
		defer j.mu.Unlock()
		j.outcomes = outcomes
		now := time.Now().UTC()
		j.status.State = JobCompleted
		j.status.FinishedAt = &now
	}()
	return j
}

func (j *Job) observe(o domain.DispatchOutcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if o.Status == domain.OutcomeSent {
		j.status.Sent++
	} else {
		j.status.Failed++
	}
}

func (j *Job) ID() string            { return j.id }
func (j *Job) Total() int            { return j.total }
func (j *Job) Done() <-chan struct{} { return j.done }
func (j *Job) Cancel()               { j.cancel() }

func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Wait blocks until the dispatch finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) (domain.DispatchSummary, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return domain.DispatchSummary{}, ctx.Err()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return domain.BuildSummary(j.outcomes), nil
}

// Registry keeps recent jobs for status lookups. Once over capacity the
// oldest finished jobs are dropped; running jobs are never evicted.
type Registry struct {
	Capacity int

	mu    sync.Mutex
	jobs  map[string]*Job
	order []string
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = 100
	}
	return &Registry{Capacity: capacity, jobs: map[string]*Job{}}
}

func (r *Registry) Put(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.id] = j
	r.order = append(r.order, j.id)
	r.evictLocked()
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

func (r *Registry) evictLocked() {
	if len(r.order) <= r.Capacity {
		return
	}
	kept := r.order[:0]
	excess := len(r.order) - r.Capacity
	for _, id := range r.order {
		j := r.jobs[id]
		if excess > 0 && isDone(j) {
			delete(r.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

func isDone(j *Job) bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}
