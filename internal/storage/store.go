package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/code-council/internal/core"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks . Store
type Store interface {
	SaveReview(ctx context.Context, review *core.Review) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveReview inserts a review record and fills in its ID.
func (s *postgresStore) SaveReview(ctx context.Context, review *core.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO reviews (run_id, repo_full_name, pr_number, head_sha, triggered_by, risk, annotations, report_json, created_at)
		VALUES (:run_id, :repo_full_name, :pr_number, :head_sha, :triggered_by, :risk, :annotations, :report_json, :created_at)
		RETURNING id`

	rows, err := s.db.NamedQueryContext(ctx, query, review)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&review.ID); err != nil {
			return fmt.Errorf("failed to read review id: %w", err)
		}
	}
	return rows.Err()
}

// GetLatestReviewForPR retrieves the most recent review for a given pull request.
func (s *postgresStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error) {
	query := `
		SELECT id, run_id, repo_full_name, pr_number, head_sha, triggered_by, risk, annotations, report_json, created_at
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var r core.Review
	if err := s.db.GetContext(ctx, &r, query, repoFullName, prNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review for %s#%d: %w", repoFullName, prNumber, ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}

// postgresStateStore keeps processed delivery keys in the processed_deliveries table.
type postgresStateStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

// NewPostgresStateStore returns a StateStore whose keys count as seen for ttl.
// A zero ttl keeps them forever.
func NewPostgresStateStore(db *sqlx.DB, ttl time.Duration) core.StateStore {
	return &postgresStateStore{db: db, ttl: ttl}
}

func (s *postgresStateStore) Check(ctx context.Context, key string) (bool, error) {
	var seen bool
	query := `SELECT EXISTS (SELECT 1 FROM processed_deliveries WHERE delivery_key = $1 AND recorded_at > $2)`
	if err := s.db.GetContext(ctx, &seen, query, key, s.cutoff()); err != nil {
		return false, fmt.Errorf("failed to check delivery %s: %w", key, err)
	}
	return seen, nil
}

func (s *postgresStateStore) Record(ctx context.Context, key string) error {
	query := `
		INSERT INTO processed_deliveries (delivery_key, recorded_at) VALUES ($1, NOW())
		ON CONFLICT (delivery_key) DO UPDATE SET recorded_at = EXCLUDED.recorded_at`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to record delivery %s: %w", key, err)
	}
	return nil
}

func (s *postgresStateStore) cutoff() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(-s.ttl)
}
