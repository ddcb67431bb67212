package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vk/chainrig/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS execution_records (
    network      TEXT        NOT NULL,
    recipe       TEXT        NOT NULL,
    fingerprint  TEXT        NOT NULL,
    run_id       TEXT        NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (network, recipe)
)`

// PostgresStore keeps execution records in the same Postgres instance the
// indexer writes to.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to the database, verifies it answers and ensures the record
// table exists. A database that cannot be reached yields ErrUnavailable.
func Open(ctx context.Context, cfg config.Database) (*PostgresStore, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrUnavailable, err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database currently answers.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsSatisfied reports whether a record exists for (network, recipe) with
// exactly the supplied fingerprint.
func (s *PostgresStore) IsSatisfied(ctx context.Context, network, recipe, fingerprint string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM execution_records WHERE network = $1 AND recipe = $2`,
		network, recipe,
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return stored == fingerprint, nil
}

// Record writes an execution record, superseding any prior record for the
// same (network, recipe) pair.
func (s *PostgresStore) Record(ctx context.Context, rec ExecutionRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO execution_records (network, recipe, fingerprint, run_id, completed_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (network, recipe) DO UPDATE
SET fingerprint = EXCLUDED.fingerprint,
    run_id = EXCLUDED.run_id,
    completed_at = EXCLUDED.completed_at`,
		rec.Network, rec.Recipe, rec.Fingerprint, rec.RunID, rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Invalidate removes the record for (network, recipe), forcing the next run
// to execute.
func (s *PostgresStore) Invalidate(ctx context.Context, network, recipe string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM execution_records WHERE network = $1 AND recipe = $2`,
		network, recipe,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// AcquireRunLock takes the network-scoped advisory lock that serializes
// orchestrator invocations. It returns ErrLocked without blocking when
// another session holds it. The lock is session-scoped: it lives on a
// dedicated connection until the returned release function is called.
func (s *PostgresStore) AcquireRunLock(ctx context.Context, network string) (func(), error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var acquired bool
	err = conn.QueryRowContext(ctx,
		`SELECT pg_try_advisory_lock(hashtext($1))`, "chainrig:"+network,
	).Scan(&acquired)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, fmt.Errorf("network %q: %w", network, ErrLocked)
	}

	release := func() {
		// Closing the connection releases the advisory lock even if the
		// unlock query fails.
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, "chainrig:"+network)
		_ = conn.Close()
	}
	return release, nil
}
