// Package assessments records tabular prediction outcomes per owner so
// the application can show assessment history.
package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is reserved for future single-record lookups; List returns
// an empty slice for unknown owners.
var ErrNotFound = errors.New("assessment not found")

// Assessment is one recorded prediction.
type Assessment struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Domain      string    `json:"domain"`
	Category    string    `json:"category"`
	Probability float64   `json:"probability"`
	RiskFactors []string  `json:"riskFactors"`
	RiskLevel   string    `json:"riskLevel,omitempty"` // coarse level, alzheimers only
	ModelStatus string    `json:"modelStatus"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists assessments.
type Store interface {
	Record(ctx context.Context, a *Assessment) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Assessment, error)
}

// PostgresStore persists assessments in the assessments table (see
// scripts/schema.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Record(ctx context.Context, a *Assessment) error {
	factors, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return fmt.Errorf("encode risk factors: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessments (id, owner_id, domain, category, probability, risk_factors, risk_level, model_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.OwnerID, a.Domain, a.Category, a.Probability, factors, a.RiskLevel, a.ModelStatus, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Assessment, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, domain, category, probability, risk_factors, risk_level, model_status, created_at
		FROM assessments WHERE owner_id = $1
		ORDER BY created_at DESC LIMIT $2`, ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select assessments: %w", err)
	}
	defer rows.Close()

	var out []*Assessment
	for rows.Next() {
		var (
			a       Assessment
			factors []byte
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Domain, &a.Category, &a.Probability, &factors, &a.RiskLevel, &a.ModelStatus, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if err := json.Unmarshal(factors, &a.RiskFactors); err != nil {
			return nil, fmt.Errorf("decode risk factors: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// MemoryStore backs the service when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []*Assessment
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Record(ctx context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *a
	s.records = append(s.records, &copied)
	return nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Assessment, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*Assessment{}
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].OwnerID == ownerID {
			snapshot := *s.records[i]
			out = append(out, &snapshot)
		}
	}
	return out, nil
}
