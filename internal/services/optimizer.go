package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	MessageOptimized = "Route optimized successfully."
	MessageDegraded  = "Route returned in input order: the solver produced an invalid route."
	MessageNoOrders  = "No orders provided. Returning direct route to warehouse."
)

// Settings is the read-only, process-wide configuration of the optimizer.
type Settings struct {
	DefaultWarehouse domain.Coordinates
	FetchGeometry    bool
}

// OptimizeRequest is one route optimization request.
// A nil Warehouse uses Settings.DefaultWarehouse.
type OptimizeRequest struct {
	Current   domain.Coordinates
	Warehouse *domain.Coordinates
	Orders    []domain.Order
	Weighting domain.Weighting
}

// Optimizer runs the collect, cost, solve and assemble pipeline for a request.
type Optimizer struct {
	Provider  ports.RoutingProvider
	Collector *EstimateCollector
	Solver    *RouteSolverAdapter
	Settings  Settings
}

func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "services.Optimize")(&err)

	weighting, err := req.Weighting.Normalize()
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	warehouse := o.Settings.DefaultWarehouse
	if req.Warehouse != nil {
		warehouse = *req.Warehouse
	}

	points := domain.NewPointSet(req.Current, req.Orders, warehouse)

	if len(req.Orders) == 0 {
		return &domain.Route{
			Points:   points,
			Segments: []domain.Segment{},
			Message:  MessageNoOrders,
		}, nil
	}

	if o.Collector == nil || o.Solver == nil {
		return nil, errors.New("optimize: optimizer is not fully configured")
	}

	table, err := o.Collector.Collect(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	costs := BuildCostMatrix(points, table, weighting)

	solved, err := o.Solver.Solve(ctx, costs)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	route, err := AssembleRoute(ctx, o.Provider, points, solved.Order, table, o.Settings.FetchGeometry)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	route.TotalCost = solved.Cost
	route.Degraded = solved.Degraded
	route.Message = MessageOptimized
	if solved.Degraded {
		route.Message = MessageDegraded
	}

	stops := make([]string, len(route.Points))
	for i, p := range route.Points {
		stops[i] = p.Label()
	}

	obs.Logger(ctx).WithFields(log.Fields{
		"stops":      stops,
		"duration_s": route.TotalDurationSeconds,
		"distance_m": route.TotalDistanceMeters,
		"degraded":   route.Degraded,
	}).Info("route optimized")

	return route, nil
}
