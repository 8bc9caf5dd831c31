package cache

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache for provider pair estimates.
type SqliteEstimateCache struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSqliteEstimateCache(db *sql.DB, ttl time.Duration) *SqliteEstimateCache {
	return &SqliteEstimateCache{DB: db, TTL: ttl, now: time.Now}
}

// Fetch fresh cached estimates for the given pairs.
func (s *SqliteEstimateCache) GetMany(
	ctx context.Context,
	keys []domain.PairKey,
) (_ map[domain.PairKey]ports.CachedEstimate, err error) {
	defer obs.Time(ctx, "estimate.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("estimate cache: db is nil")
	}

	out := make(map[domain.PairKey]ports.CachedEstimate, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	origins, byOrigin := groupByOrigin(keys)
	oldest := cutoff(s.now(), s.TTL)

	for _, origin := range origins {
		dests := byOrigin[origin]

		byName := make(map[string]domain.Coordinates, len(dests))
		ph := make([]string, 0, len(dests))
		args := make([]any, 0, 2+len(dests))
		args = append(args, origin.String(), oldest)
		for _, d := range dests {
			byName[d.String()] = d
			ph = append(ph, "?")
			args = append(args, d.String())
		}

		// SQLite does not support binding slices directly in an IN (...) clause.
		// Only the placeholder structure is interpolated; all values remain parameterized.
		q := fmt.Sprintf(`
		SELECT
            destination,
            distance_meters,
            duration_seconds
        FROM route_estimates
        WHERE origin = ?
            AND fetched_at >= ?
            AND destination IN (%s);
		`, strings.Join(ph, ","))

		if err := s.queryOrigin(ctx, q, args, origin, byName, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *SqliteEstimateCache) queryOrigin(
	ctx context.Context,
	q string,
	args []any,
	origin domain.Coordinates,
	byName map[string]domain.Coordinates,
	out map[domain.PairKey]ports.CachedEstimate,
) error {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("get estimate cache: query route_estimates table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dest string
		var meters, seconds float64
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return fmt.Errorf("get estimate cache: scan rows: %w", err)
		}
		to, ok := byName[dest]
		if !ok {
			continue
		}
		out[domain.PairKey{From: origin, To: to}] = ports.CachedEstimate{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("get estimate cache: row iteration: %w", err)
	}

	return nil
}

// Store many cached estimates.
func (s *SqliteEstimateCache) PutMany(
	ctx context.Context,
	entries map[domain.PairKey]ports.CachedEstimate,
) error {
	if s.DB == nil {
		return errors.New("estimate cache: db is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert estimate cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO route_estimates (
        origin,
        destination,
        distance_meters,
        duration_seconds,
        fetched_at
    )
    VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert estimate cache: db prepare: %w", err)
	}
	defer stmt.Close()

	fetchedAt := s.now().Unix()
	for k, e := range entries {
		if _, err := stmt.ExecContext(ctx, k.From.String(), k.To.String(), e.DistanceMeters, e.DurationSeconds, fetchedAt); err != nil {
			return fmt.Errorf("insert estimate cache pair=%q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert estimate cache commit: %w", err)
	}

	return nil
}
