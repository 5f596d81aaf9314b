package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

type fakeKV struct {
	data map[string]string
	sets int
	gets int
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	val, ok := f.data[key]
	if !ok {
		return "", ErrMiss
	}
	return val, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}

func TestCachedStore_PendingNeverCached(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewCachedStore(NewMemoryStore(), kv, time.Minute, zap.NewNop())

	require.NoError(t, store.Create(ctx, pendingJob("job-1")))

	job, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)
	assert.Zero(t, kv.sets)
}

func TestCachedStore_TerminalSnapshotServedFromCache(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	inner := NewMemoryStore()
	store := NewCachedStore(inner, kv, time.Minute, zap.NewNop())

	require.NoError(t, store.Create(ctx, pendingJob("job-2")))
	result := &inference.ScanResult{Prediction: "No Tumor", Confidence: 0.9}
	require.NoError(t, store.Complete(ctx, "job-2", result, time.Now().UTC()))

	// First read populates the cache from the inner store.
	job, err := store.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, 1, kv.sets)

	// Later reads are served by the cache even if the inner store loses
	// the row.
	delete(inner.jobs, "job-2")
	job, err = store.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, "No Tumor", job.Result.Prediction)
}

func TestCachedStore_MissFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := NewCachedStore(NewMemoryStore(), newFakeKV(), time.Minute, zap.NewNop())

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
