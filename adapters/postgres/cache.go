package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/konturio/insights-llm-api/ports"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// pendingStaleAfter is how long a pending row may sit unresolved before
// the next claimant may take it over. It must exceed the longest external
// call timeout, or a slow-but-alive owner gets its claim stolen.
const pendingStaleAfter = "2 minutes"

// ComputeCacheRepository implements ports.ComputeCache over one Postgres
// table. The table's uniqueness constraint on the key columns is the only
// coordination primitive. A claim is a short insert of a pending row
// (response NULL); the external computation runs outside any transaction
// and the result lands in a separate update. A pending row whose owner
// crashed is taken over once it is older than pendingStaleAfter.
type ComputeCacheRepository struct {
	db    *sqlx.DB
	table tableSpec
}

type tableSpec struct {
	name       string
	hashCol    string
	requestCol string
	hasModel   bool
}

// NewCommentaryCache creates the repository for the llm_cache table, keyed
// by (hash, model_name).
func NewCommentaryCache(db *sqlx.DB) *ComputeCacheRepository {
	return &ComputeCacheRepository{
		db:    db,
		table: tableSpec{name: "llm_cache", hashCol: "hash", requestCol: "request", hasModel: true},
	}
}

// NewGeocoderCache creates the repository for the nominatim_cache table,
// keyed by query_hash alone.
func NewGeocoderCache(db *sqlx.DB) *ComputeCacheRepository {
	return &ComputeCacheRepository{
		db:    db,
		table: tableSpec{name: "nominatim_cache", hashCol: "query_hash", requestCol: "query", hasModel: false},
	}
}

// keyClause renders the WHERE condition for the fingerprint, with
// placeholders starting at $start.
func (t tableSpec) keyClause(start int) string {
	clause := fmt.Sprintf("%s = $%d", t.hashCol, start)
	if t.hasModel {
		clause += fmt.Sprintf(" AND model_name = $%d", start+1)
	}
	return clause
}

func (t tableSpec) keyArgs(hash, model string) []any {
	if t.hasModel {
		return []any{hash, model}
	}
	return []any{hash}
}

// Lookup returns a filled cache entry, skipping pending rows.
func (r *ComputeCacheRepository) Lookup(ctx context.Context, hash, model string) (string, bool, error) {
	query := fmt.Sprintf(
		`SELECT response FROM %s WHERE %s AND response IS NOT NULL`,
		r.table.name, r.table.keyClause(1),
	)

	var response string
	err := r.db.GetContext(ctx, &response, query, r.table.keyArgs(hash, model)...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

// Claim records a pending row for the fingerprint and commits immediately.
// When a row already exists, a stale pending one is taken over; a live
// pending or filled one yields ErrFingerprintClaimed.
func (r *ComputeCacheRepository) Claim(ctx context.Context, hash, request, model string) (ports.CacheClaim, error) {
	insert := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, response) VALUES ($1, $2, NULL)`,
		r.table.name, r.table.hashCol, r.table.requestCol,
	)
	args := []any{hash, request}
	if r.table.hasModel {
		insert = fmt.Sprintf(
			`INSERT INTO %s (%s, %s, response, model_name) VALUES ($1, $2, NULL, $3)`,
			r.table.name, r.table.hashCol, r.table.requestCol,
		)
		args = append(args, model)
	}

	_, err := r.db.ExecContext(ctx, insert, args...)
	if err == nil {
		return &pendingClaim{db: r.db, table: r.table, hash: hash, model: model}, nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return nil, err
	}

	// the row exists; take it over only if it is pending and stale
	reclaim := fmt.Sprintf(
		`UPDATE %s SET created_at = NOW() WHERE %s AND response IS NULL AND created_at < NOW() - INTERVAL '%s'`,
		r.table.name, r.table.keyClause(1), pendingStaleAfter,
	)
	result, err := r.db.ExecContext(ctx, reclaim, r.table.keyArgs(hash, model)...)
	if err != nil {
		return nil, err
	}
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		return nil, ports.ErrFingerprintClaimed
	}
	return &pendingClaim{db: r.db, table: r.table, hash: hash, model: model}, nil
}

type pendingClaim struct {
	db    *sqlx.DB
	table tableSpec
	hash  string
	model string
}

// Fulfill writes the computed response into the pending row, publishing the
// entry. A claim stolen in the meantime makes this a no-op for the loser.
func (c *pendingClaim) Fulfill(ctx context.Context, response string) error {
	update := fmt.Sprintf(
		`UPDATE %s SET response = $1 WHERE %s AND response IS NULL`,
		c.table.name, c.table.keyClause(2),
	)
	args := append([]any{response}, c.table.keyArgs(c.hash, c.model)...)
	_, err := c.db.ExecContext(ctx, update, args...)
	return err
}

// Abort removes the pending row so the fingerprint stays claimable. It runs
// on a background context because aborts happen on failure paths where the
// request context may already be cancelled.
func (c *pendingClaim) Abort() error {
	del := fmt.Sprintf(
		`DELETE FROM %s WHERE %s AND response IS NULL`,
		c.table.name, c.table.keyClause(1),
	)
	_, err := c.db.ExecContext(context.Background(), del, c.table.keyArgs(c.hash, c.model)...)
	return err
}
