package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/konturio/insights-llm-api/internal/errors"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createLLMCacheTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create llm_cache table")
	}
	if err := r.createNominatimCacheTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create nominatim_cache table")
	}
	if err := r.createSearchHistoryTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create search_history table")
	}
	return nil
}

// createLLMCacheTable creates the single-flight commentary cache. The
// primary key on (hash, model_name) is the load-bearing invariant: the
// claim protocol relies on its uniqueness, and created_at drives the
// stale-claim takeover.
func (r *MigrationRunner) createLLMCacheTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS llm_cache (
			hash CHAR(32) NOT NULL,
			request TEXT NOT NULL,
			response TEXT,
			model_name VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (hash, model_name)
		)
	`)
	return err
}

func (r *MigrationRunner) createNominatimCacheTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS nominatim_cache (
			query_hash CHAR(32) PRIMARY KEY,
			query TEXT NOT NULL,
			response TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSearchHistoryTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS search_history (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			app_id UUID NOT NULL,
			query TEXT NOT NULL,
			search_results JSONB NOT NULL,
			selected_feature JSONB NOT NULL,
			selected_feature_type VARCHAR(50) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}
