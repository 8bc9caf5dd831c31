package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect selects SQL placeholder syntax.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSqlite   Dialect = "sqlite"
)

// InitSchema creates the estimate cache table.
// The DDL is valid for both Postgres and SQLite.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createEstimatesQuery := `
	CREATE TABLE IF NOT EXISTS route_estimates (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters DOUBLE PRECISION NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        fetched_at BIGINT NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_estimates_fetched_at
    ON route_estimates(fetched_at);
	`

	statements := []string{
		createEstimatesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Prune deletes estimates fetched before now-ttl and reports how many were removed.
func Prune(ctx context.Context, db *sql.DB, dialect Dialect, ttl time.Duration) (int64, error) {
	if db == nil {
		return 0, errors.New("prune estimates: DB is nil")
	}
	if ttl <= 0 {
		return 0, nil
	}

	q := `DELETE FROM route_estimates WHERE fetched_at < ?;`
	if dialect == DialectPostgres {
		q = `DELETE FROM route_estimates WHERE fetched_at < $1;`
	}

	res, err := db.ExecContext(ctx, q, cutoff(time.Now(), ttl))
	if err != nil {
		return 0, fmt.Errorf("prune estimates: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune estimates: rows affected: %w", err)
	}
	return n, nil
}
