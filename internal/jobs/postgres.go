package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

// PostgresStore persists jobs in the analysis_jobs table (see
// scripts/schema.sql). Results are stored as JSONB; the terminal
// transition is a conditional update on status='pending'.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, job *Job) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_jobs (id, owner_id, scan_type, input_ref, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.OwnerID, string(job.ScanType), job.InputRef, string(job.Status), job.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis job: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Job, error) {
	var (
		job        Job
		scanType   string
		status     string
		resultJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, scan_type, input_ref, status, result, COALESCE(error, ''), submitted_at, completed_at
		FROM analysis_jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.OwnerID, &scanType, &job.InputRef, &status, &resultJSON, &job.Error, &job.SubmittedAt, &job.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis job: %w", err)
	}

	job.ScanType = inference.ScanType(scanType)
	job.Status = Status(status)
	if len(resultJSON) > 0 {
		var result inference.ScanResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("decode analysis result: %w", err)
		}
		job.Result = &result
	}
	return &job, nil
}

func (s *PostgresStore) Complete(ctx context.Context, id string, result *inference.ScanResult, at time.Time) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $2, result = $3, completed_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(StatusCompleted), resultJSON, at, string(StatusPending),
	)
	if err != nil {
		return fmt.Errorf("complete analysis job: %w", err)
	}
	return s.casOutcome(ctx, id, tag.RowsAffected())
}

func (s *PostgresStore) Fail(ctx context.Context, id string, message string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE analysis_jobs
		SET status = $2, error = $3, completed_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(StatusFailed), message, at, string(StatusPending),
	)
	if err != nil {
		return fmt.Errorf("fail analysis job: %w", err)
	}
	return s.casOutcome(ctx, id, tag.RowsAffected())
}

// casOutcome distinguishes a lost compare-and-set from a missing row.
func (s *PostgresStore) casOutcome(ctx context.Context, id string, rows int64) error {
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM analysis_jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check analysis job: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrTerminal
}
