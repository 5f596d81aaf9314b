package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

// Analyzer runs the remote inference for one scan. Satisfied by
// *inference.Client.
type Analyzer interface {
	AnalyzeScan(ctx context.Context, scan inference.ScanType, inputRef string) (inference.ScanResult, error)
}

// Orchestrator decouples job submission from job execution: Submit writes
// the Pending record durably, then hands the id to a worker over a queue.
// The submitting request never waits on inference.
type Orchestrator struct {
	store    Store
	analyzer Analyzer
	log      *zap.Logger
	timeout  time.Duration
	queue    chan string
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// terminalWriteTimeout bounds the Complete/Fail write independently of
// the inference attempt, whose context may already be expired.
const terminalWriteTimeout = 5 * time.Second

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each remote inference attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithQueueSize sets the submission queue capacity.
func WithQueueSize(n int) Option {
	return func(o *Orchestrator) { o.queue = make(chan string, n) }
}

func NewOrchestrator(store Store, analyzer Analyzer, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		analyzer: analyzer,
		log:      log,
		timeout:  60 * time.Second,
		queue:    make(chan string, 64),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start launches the worker pool draining the queue.
func (o *Orchestrator) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for id := range o.queue {
				o.run(id)
			}
		}()
	}
}

// Close stops accepting submissions and waits for in-flight jobs to reach
// a terminal state.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit persists a Pending job and schedules its inference attempt. The
// Pending record is durable before the id is enqueued, so a crash between
// the two leaves a recoverable Pending job rather than a lost one.
func (o *Orchestrator) Submit(ctx context.Context, ownerID string, scan inference.ScanType, inputRef string) (*Job, error) {
	job := &Job{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ScanType:    scan,
		InputRef:    inputRef,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	if err := o.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("persist analysis job: %w", err)
	}

	// The Pending row is durable, so a full or closed queue leaves a
	// recoverable Pending job instead of blocking the request.
	if !o.enqueue(job.ID) {
		o.log.Warn("analysis queue unavailable, job left pending", zap.String("jobId", job.ID))
	}
	o.log.Info("analysis job submitted",
		zap.String("jobId", job.ID),
		zap.String("scanType", string(scan)),
	)
	return job, nil
}

func (o *Orchestrator) enqueue(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	select {
	case o.queue <- id:
		return true
	default:
		return false
	}
}

// Status returns the current persisted snapshot of a job.
func (o *Orchestrator) Status(ctx context.Context, id string) (*Job, error) {
	return o.store.Get(ctx, id)
}

// run executes one job's single inference attempt and applies the
// terminal transition. A lost compare-and-set means another writer got
// there first; the recorded outcome stands.
func (o *Orchestrator) run(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	job, err := o.store.Get(ctx, id)
	if err != nil {
		o.log.Error("cannot load queued job", zap.String("jobId", id), zap.Error(err))
		return
	}
	if job.Status != StatusPending {
		return
	}

	result, err := o.analyzer.AnalyzeScan(ctx, job.ScanType, job.InputRef)
	now := time.Now().UTC()

	// A hung model expires ctx; the terminal write must still land.
	writeCtx, writeCancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer writeCancel()

	if err != nil {
		o.log.Warn("analysis failed", zap.String("jobId", id), zap.Error(err))
		if ferr := o.store.Fail(writeCtx, id, err.Error(), now); ferr != nil && !errors.Is(ferr, ErrTerminal) {
			o.log.Error("cannot record job failure", zap.String("jobId", id), zap.Error(ferr))
		}
		return
	}

	if cerr := o.store.Complete(writeCtx, id, &result, now); cerr != nil && !errors.Is(cerr, ErrTerminal) {
		o.log.Error("cannot record job result", zap.String("jobId", id), zap.Error(cerr))
		return
	}
	o.log.Info("analysis job completed",
		zap.String("jobId", id),
		zap.String("prediction", result.Prediction),
	)
}
