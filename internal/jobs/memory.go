package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

// MemoryStore keeps jobs in a map. It backs the service when no database
// is configured and the tests everywhere else.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]*Job{}}
}

func (s *MemoryStore) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

func (s *MemoryStore) Complete(ctx context.Context, id string, result *inference.ScanResult, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != StatusPending {
		return ErrTerminal
	}

	job.Status = StatusCompleted
	job.Result = result
	job.CompletedAt = &at
	return nil
}

func (s *MemoryStore) Fail(ctx context.Context, id string, message string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != StatusPending {
		return ErrTerminal
	}

	job.Status = StatusFailed
	job.Error = message
	job.CompletedAt = &at
	return nil
}
