package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout means the job was still Pending after the attempt
// budget. It is deliberately distinct from a Failed job: the analysis may
// yet finish, the caller just stops waiting.
var ErrPollTimeout = errors.New("analysis still pending after polling budget")

// StatusFunc fetches the current snapshot of a job.
type StatusFunc func(ctx context.Context, id string) (*Job, error)

// Poller implements the client-side polling protocol: fetch the status on
// a fixed interval until the job leaves Pending or the attempt budget is
// spent.
type Poller struct {
	Interval time.Duration
	Attempts int
}

// DefaultPoller matches the reference client: 3 seconds between polls, 10
// attempts, a 30-second overall budget.
var DefaultPoller = Poller{Interval: 3 * time.Second, Attempts: 10}

// Wait polls until the job reaches a terminal state. On budget exhaustion
// it returns the last Pending snapshot together with ErrPollTimeout.
func (p Poller) Wait(ctx context.Context, id string, fetch StatusFunc) (*Job, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPoller.Interval
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultPoller.Attempts
	}

	var last *Job
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last, ctx.Err()
			case <-timer.C:
			}
		}

		job, err := fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.Terminal() {
			return job, nil
		}
		last = job
	}
	return last, ErrPollTimeout
}
