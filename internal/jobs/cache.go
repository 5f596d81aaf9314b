package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

// ErrMiss is returned by a KV when the key is absent.
var ErrMiss = errors.New("cache miss")

// KV is the snapshot cache the CachedStore writes terminal jobs to.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisKV adapts a go-redis client to the KV interface.
type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// CachedStore wraps a Store with a read-through cache for terminal
// snapshots, absorbing polling reads once a job has finished. Pending jobs
// are never cached, so a poll can never observe a stale Pending after the
// terminal transition was written.
type CachedStore struct {
	inner Store
	kv    KV
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedStore(inner Store, kv KV, ttl time.Duration, log *zap.Logger) *CachedStore {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &CachedStore{inner: inner, kv: kv, ttl: ttl, log: log}
}

func (s *CachedStore) Create(ctx context.Context, job *Job) error {
	return s.inner.Create(ctx, job)
}

func (s *CachedStore) Get(ctx context.Context, id string) (*Job, error) {
	if raw, err := s.kv.Get(ctx, cacheKey(id)); err == nil {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err == nil {
			return &job, nil
		}
		s.log.Warn("discarding undecodable cached job", zap.String("jobId", id))
	} else if !errors.Is(err, ErrMiss) {
		s.log.Warn("job cache read failed", zap.String("jobId", id), zap.Error(err))
	}

	job, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		s.cache(ctx, job)
	}
	return job, nil
}

func (s *CachedStore) Complete(ctx context.Context, id string, result *inference.ScanResult, at time.Time) error {
	return s.inner.Complete(ctx, id, result, at)
}

func (s *CachedStore) Fail(ctx context.Context, id string, message string, at time.Time) error {
	return s.inner.Fail(ctx, id, message, at)
}

// cache is best effort; a cache write failure never fails the read.
func (s *CachedStore) cache(ctx context.Context, job *Job) {
	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, cacheKey(job.ID), string(raw), s.ttl); err != nil {
		s.log.Warn("job cache write failed", zap.String("jobId", job.ID), zap.Error(err))
	}
}

func cacheKey(id string) string { return "analysis-job:" + id }
