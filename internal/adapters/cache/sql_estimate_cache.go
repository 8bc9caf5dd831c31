package cache

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"time"
)

// SQLEstimateCache is a Postgres-backed cache for provider pair estimates.
type SQLEstimateCache struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSQLEstimateCache(db *sql.DB, ttl time.Duration) *SQLEstimateCache {
	return &SQLEstimateCache{DB: db, TTL: ttl, now: time.Now}
}

// Fetch fresh cached estimates for the given pairs.
func (s *SQLEstimateCache) GetMany(
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

	q := `
	SELECT destination, distance_meters, duration_seconds
    FROM route_estimates
    WHERE origin = $1
        AND destination = ANY($2::text[])
        AND fetched_at >= $3;
	`

	for _, origin := range origins {
		dests := byOrigin[origin]
		byName := make(map[string]domain.Coordinates, len(dests))
		names := make([]string, 0, len(dests))
		for _, d := range dests {
			byName[d.String()] = d
			names = append(names, d.String())
		}

		if err := s.queryOrigin(ctx, q, origin, names, byName, oldest, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *SQLEstimateCache) queryOrigin(
	ctx context.Context,
	q string,
	origin domain.Coordinates,
	names []string,
	byName map[string]domain.Coordinates,
	oldest int64,
	out map[domain.PairKey]ports.CachedEstimate,
) error {
	rows, err := s.DB.QueryContext(ctx, q, origin.String(), names, oldest)
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
func (s *SQLEstimateCache) PutMany(
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
	INSERT INTO route_estimates (origin, destination, distance_meters, duration_seconds, fetched_at)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		fetched_at = EXCLUDED.fetched_at;
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
