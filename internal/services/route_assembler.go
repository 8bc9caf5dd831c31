package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"fmt"
)

// AssembleRoute maps a visiting order back to points and real segment metrics.
//
// Totals sum the available segments only. When fetchGeometry is set and the
// route has more than one point, one extra provider call over the whole path
// supplies geometry and turn-by-turn legs; its failure is logged and ignored.
func AssembleRoute(
	ctx context.Context,
	provider ports.RoutingProvider,
	points []domain.Point,
	order []int,
	table EstimateTable,
	fetchGeometry bool,
) (*domain.Route, error) {
	route := &domain.Route{
		Points:   make([]domain.Point, 0, len(order)),
		Segments: make([]domain.Segment, 0, max(len(order)-1, 0)),
	}

	for _, idx := range order {
		if idx < 0 || idx >= len(points) {
			return nil, fmt.Errorf("assemble route: node index %d out of range for %d points", idx, len(points))
		}
		route.Points = append(route.Points, points[idx])
	}

	for k := 0; k+1 < len(route.Points); k++ {
		from, to := route.Points[k], route.Points[k+1]

		e, ok := table.Lookup(from, to)
		if !ok || !e.Reachable() {
			route.Segments = append(route.Segments, domain.UnavailableSegment(from, to))
			continue
		}

		route.Segments = append(route.Segments, domain.Segment{
			From:            from,
			To:              to,
			DurationSeconds: e.Duration,
			DistanceMeters:  e.Distance,
			Available:       true,
		})
		route.TotalDurationSeconds += e.Duration
		route.TotalDistanceMeters += e.Distance
	}

	if fetchGeometry && provider != nil && len(route.Points) > 1 {
		attachGeometry(ctx, provider, route)
	}

	return route, nil
}

func attachGeometry(ctx context.Context, provider ports.RoutingProvider, route *domain.Route) {
	var err error
	defer obs.Time(ctx, "services.FetchRouteGeometry")(&err)

	coords := make([]domain.Coordinates, len(route.Points))
	for i, p := range route.Points {
		coords[i] = p.Coords
	}

	data, err := provider.Route(ctx, ports.RouteQuery{
		Coordinates: coords,
		Overview:    ports.OverviewFull,
		Steps:       true,
	})
	if err != nil {
		return
	}

	route.Geometry = data.Geometry
	route.Legs = data.Legs
}
