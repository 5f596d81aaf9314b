package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

var (
	// ErrNotFound is returned when no job exists for the given id.
	ErrNotFound = errors.New("analysis job not found")

	// ErrTerminal is returned when a terminal transition is attempted on
	// a job that already left Pending. The first result stands.
	ErrTerminal = errors.New("analysis job already in a terminal state")
)

// Store persists analysis jobs. Complete and Fail are compare-and-set:
// they apply only while the job is still Pending, so a duplicate attempt
// cannot overwrite the recorded outcome.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Complete(ctx context.Context, id string, result *inference.ScanResult, at time.Time) error
	Fail(ctx context.Context, id string, message string, at time.Time) error
}
