package handlers

import (
	"context"
	"delivery-route-optimizer/internal/api/dto"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultWeight = 0.5

// RouteOptimizer is the service the handler delegates to.
type RouteOptimizer interface {
	Optimize(ctx context.Context, req services.OptimizeRequest) (*domain.Route, error)
}

type OptimizeHandler struct {
	Optimizer RouteOptimizer
}

// Optimize decodes and validates a route request, runs the optimizer and
// maps its errors onto HTTP statuses.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeRouteRequest

	dec := json.NewDecoder(c.Request.Body)
	defer c.Request.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(c, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, err := toOptimizeRequest(req)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.Optimizer.Optimize(c.Request.Context(), svcReq)
	switch {
	case errors.Is(err, domain.ErrInvalidWeighting):
		writeError(c, http.StatusBadRequest, "Total weights for time and distance cannot be zero.")
		return
	case errors.Is(err, services.ErrOptimizationFailed):
		obs.Logger(c.Request.Context()).WithError(err).Warn("route optimization infeasible")
		writeError(c, http.StatusUnprocessableEntity, "Failed to find a feasible route for the given orders.")
		return
	case err != nil:
		obs.Logger(c.Request.Context()).WithError(err).Error("optimize route failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(c, http.StatusOK, toOptimizedRouteResponse(route))
}

func toOptimizeRequest(req dto.OptimizeRouteRequest) (services.OptimizeRequest, error) {
	if req.CurrentLatitude == nil || req.CurrentLongitude == nil {
		return services.OptimizeRequest{}, errors.New("current_latitude and current_longitude are required")
	}
	current, err := coordinates(*req.CurrentLatitude, *req.CurrentLongitude)
	if err != nil {
		return services.OptimizeRequest{}, fmt.Errorf("current location: %w", err)
	}

	out := services.OptimizeRequest{
		Current: current,
		Orders:  make([]domain.Order, 0, len(req.Orders)),
	}

	switch {
	case req.WarehouseLatitude != nil && req.WarehouseLongitude != nil:
		wh, err := coordinates(*req.WarehouseLatitude, *req.WarehouseLongitude)
		if err != nil {
			return services.OptimizeRequest{}, fmt.Errorf("warehouse: %w", err)
		}
		out.Warehouse = &wh
	case req.WarehouseLatitude != nil || req.WarehouseLongitude != nil:
		return services.OptimizeRequest{}, errors.New("warehouse_latitude and warehouse_longitude must be provided together")
	}

	for i, o := range req.Orders {
		id := strings.TrimSpace(o.ID)
		if id == "" {
			return services.OptimizeRequest{}, fmt.Errorf("orders[%d]: id is required", i)
		}
		if o.Latitude == nil || o.Longitude == nil {
			return services.OptimizeRequest{}, fmt.Errorf("orders[%d]: latitude and longitude are required", i)
		}
		coords, err := coordinates(*o.Latitude, *o.Longitude)
		if err != nil {
			return services.OptimizeRequest{}, fmt.Errorf("orders[%d]: %w", i, err)
		}
		if !(o.Weight > 0) || math.IsInf(o.Weight, 0) {
			return services.OptimizeRequest{}, fmt.Errorf("orders[%d]: weight must be greater than 0", i)
		}
		out.Orders = append(out.Orders, domain.Order{ID: id, Coords: coords, Weight: o.Weight})
	}

	wt, err := weight("weight_time", req.WeightTime)
	if err != nil {
		return services.OptimizeRequest{}, err
	}
	wd, err := weight("weight_distance", req.WeightDistance)
	if err != nil {
		return services.OptimizeRequest{}, err
	}
	out.Weighting = domain.Weighting{Time: wt, Distance: wd}

	return out, nil
}

func coordinates(lat, lon float64) (domain.Coordinates, error) {
	if !(lat >= -90 && lat <= 90) {
		return domain.Coordinates{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if !(lon >= -180 && lon <= 180) {
		return domain.Coordinates{}, fmt.Errorf("longitude %v out of range", lon)
	}
	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}

func weight(name string, v *float64) (float64, error) {
	if v == nil {
		return defaultWeight, nil
	}
	if !(*v >= 0 && *v <= 1) {
		return 0, fmt.Errorf("%s must be between 0 and 1", name)
	}
	return *v, nil
}

func toOptimizedRouteResponse(route *domain.Route) dto.OptimizedRouteResponse {
	res := dto.OptimizedRouteResponse{
		OptimizedRoute:            make([]dto.RoutePoint, 0, len(route.Points)),
		TotalPredictedTimeSeconds: route.TotalDurationSeconds,
		TotalDistanceMeters:       route.TotalDistanceMeters,
		Message:                   route.Message,
		Degraded:                  route.Degraded,
		SegmentsDetails:           make([]dto.RouteSegmentDetail, 0, len(route.Segments)),
	}

	for _, p := range route.Points {
		res.OptimizedRoute = append(res.OptimizedRoute, dto.RoutePoint{
			ID:        p.ID,
			Type:      string(p.Kind),
			Latitude:  p.Coords.Lat,
			Longitude: p.Coords.Lon,
		})
	}

	for _, s := range route.Segments {
		d := dto.RouteSegmentDetail{
			FromPointID: s.From.ID,
			ToPointID:   s.To.ID,
			FromType:    string(s.From.Kind),
			ToType:      string(s.To.Kind),
			Available:   s.Available,
		}
		if s.Available {
			d.DurationSeconds = finite(s.DurationSeconds)
			d.DistanceMeters = finite(s.DistanceMeters)
		}
		res.SegmentsDetails = append(res.SegmentsDetails, d)
	}

	if route.Geometry != "" {
		res.FullRouteGeometry = &dto.RouteGeometry{Polyline: route.Geometry}
	}

	if route.Legs != nil {
		res.FullRouteLegs = make([]dto.Leg, 0, len(route.Legs))
		for _, l := range route.Legs {
			res.FullRouteLegs = append(res.FullRouteLegs, toLeg(l))
		}
	}

	return res
}

func toLeg(l domain.Leg) dto.Leg {
	leg := dto.Leg{
		Summary:  l.Summary,
		Distance: l.Distance,
		Duration: l.Duration,
		Steps:    make([]dto.Step, 0, len(l.Steps)),
	}

	for _, s := range l.Steps {
		step := dto.Step{
			Instruction:      s.Instruction,
			Name:             s.Name,
			Distance:         s.Distance,
			Duration:         s.Duration,
			Type:             s.Type,
			ExitBearing:      s.ExitBearing,
			ManeuverModifier: optional(s.Modifier),
			Mode:             optional(s.Mode),
		}
		for _, in := range s.Intersections {
			step.Intersections = append(step.Intersections, dto.Intersection{
				Location: in.Location,
				Bearings: in.Bearings,
				Entry:    in.Entry,
				In:       in.In,
				Out:      in.Out,
			})
		}
		leg.Steps = append(leg.Steps, step)
	}

	return leg
}

// finite returns nil for values JSON cannot encode.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
