package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// CachedEstimate is provider distance and duration stored for a coordinate pair.
type CachedEstimate struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Port: a boundary for persisting provider estimates between requests.
type EstimateCache interface {
	// Fetch cached estimates; missing or expired keys are absent from the result.
	GetMany(ctx context.Context, keys []domain.PairKey) (map[domain.PairKey]CachedEstimate, error)
	// Store estimates for the given keys.
	PutMany(ctx context.Context, entries map[domain.PairKey]CachedEstimate) error
}
