package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// MatrixCell is one origin->destination entry of a table response.
type MatrixCell struct {
	DistanceMeters  float64
	DurationSeconds float64
	OK              bool
}

// Optional extension of RoutingProvider that supports batched lookups.
type MatrixProvider interface {
	RoutingProvider
	// Return distances and durations between every ordered pair of coordinates.
	Matrix(ctx context.Context, coords []domain.Coordinates) ([][]MatrixCell, error)
}
