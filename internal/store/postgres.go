package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/crm-sync-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the audit log of processed triggers. Processing never
// reads from it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// Record appends an outcome to the audit log. Writing the same outcome twice
// is a no-op.
func (p *PostgresStore) Record(ctx context.Context, out models.SyncOutcome) error {
	if out.ID == "" || out.Status == "" {
		return errors.New("outcome id and status required")
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO sync_outcomes(
			id, source, source_id, record_type, object_class, object_id,
			status, error_kind, error, lookup_failed, external_ids, processed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO NOTHING
	`,
		out.ID, out.Source, out.SourceID, out.RecordType, out.ObjectClass, out.ObjectID,
		string(out.Status), out.ErrorKind, out.Error, out.LookupFailed, out.ExternalIDs,
		out.ProcessedAt.UTC(),
	)
	return err
}

// OutcomeFilter selects audit rows. Empty RecordType or Status match any value.
type OutcomeFilter struct {
	RecordType string
	Status     string
	From       time.Time
	To         time.Time
}

// CountOutcomes returns the number of outcomes matching f in the window [From,To).
// Using a half-open interval avoids double counting at window boundaries.
func (p *PostgresStore) CountOutcomes(ctx context.Context, f OutcomeFilter) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM sync_outcomes
		WHERE ($1::text = '' OR record_type = $1)
		  AND ($2::text = '' OR status = $2)
		  AND processed_at >= $3
		  AND processed_at <  $4
	`, f.RecordType, f.Status, f.From.UTC(), f.To.UTC()).Scan(&count)

	return count, err
}
