package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

func pendingJob(id string) *Job {
	return &Job{
		ID:          id,
		ScanType:    inference.ScanTumor,
		InputRef:    "https://cdn.example.com/scan.png",
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CompleteIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, pendingJob("job-1")))

	first := &inference.ScanResult{Prediction: "No Tumor", Confidence: 0.93}
	now := time.Now().UTC()
	require.NoError(t, store.Complete(ctx, "job-1", first, now))

	// A second terminal transition must not change the recorded result.
	second := &inference.ScanResult{Prediction: "Glioma", Confidence: 0.51}
	assert.ErrorIs(t, store.Complete(ctx, "job-1", second, now.Add(time.Second)), ErrTerminal)
	assert.ErrorIs(t, store.Fail(ctx, "job-1", "late failure", now.Add(time.Second)), ErrTerminal)

	job, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, "No Tumor", job.Result.Prediction)
	assert.Empty(t, job.Error)
}

func TestMemoryStore_FailRecordsMessage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, pendingJob("job-2")))

	require.NoError(t, store.Fail(ctx, "job-2", "model unreachable", time.Now().UTC()))

	job, err := store.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "model unreachable", job.Error)
	assert.NotNil(t, job.CompletedAt)
}

func TestMemoryStore_GetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, pendingJob("job-3")))

	snapshot, err := store.Get(ctx, "job-3")
	require.NoError(t, err)
	snapshot.Status = StatusFailed

	fresh, err := store.Get(ctx, "job-3")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fresh.Status)
}
