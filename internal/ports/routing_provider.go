package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// Overview controls how much geometry the routing provider returns.
type Overview string

const (
	OverviewFull       Overview = "full"
	OverviewSimplified Overview = "simplified"
	OverviewFalse      Overview = "false"
)

// RouteQuery asks for the best route through Coordinates in order.
type RouteQuery struct {
	Coordinates []domain.Coordinates
	Overview    Overview
	Steps       bool
}

// RouteData is the first candidate route returned by the provider.
type RouteData struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        string
	Legs            []domain.Leg
}

// Contract for retrieving travel distance, duration and geometry along a path.
type RoutingProvider interface {
	// Return the best route through the coordinates, or an error when none exists.
	Route(ctx context.Context, q RouteQuery) (*RouteData, error)
}
