package dto

type OrderRequest struct {
	ID        string   `json:"id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Weight    float64  `json:"weight"`
}

type OptimizeRouteRequest struct {
	Orders             []OrderRequest `json:"orders"`
	WarehouseLatitude  *float64       `json:"warehouse_latitude"`
	WarehouseLongitude *float64       `json:"warehouse_longitude"`
	CurrentLatitude    *float64       `json:"current_latitude"`
	CurrentLongitude   *float64       `json:"current_longitude"`
	WeightTime         *float64       `json:"weight_time"`
	WeightDistance     *float64       `json:"weight_distance"`
}

type RoutePoint struct {
	ID        *string `json:"id"`
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Unavailable segments carry null metrics.
type RouteSegmentDetail struct {
	FromPointID     *string  `json:"from_point_id"`
	ToPointID       *string  `json:"to_point_id"`
	FromType        string   `json:"from_type"`
	ToType          string   `json:"to_type"`
	DurationSeconds *float64 `json:"duration_seconds"`
	DistanceMeters  *float64 `json:"distance_meters"`
	Available       bool     `json:"available"`
}

type RouteGeometry struct {
	Polyline string `json:"polyline"`
}

type Intersection struct {
	Location [2]float64 `json:"location"`
	Bearings []int      `json:"bearings,omitempty"`
	Entry    []bool     `json:"entry,omitempty"`
	In       *int       `json:"in,omitempty"`
	Out      *int       `json:"out,omitempty"`
}

type Step struct {
	Instruction      string         `json:"instruction"`
	Name             string         `json:"name"`
	Distance         float64        `json:"distance"`
	Duration         float64        `json:"duration"`
	Type             string         `json:"type"`
	ExitBearing      *float64       `json:"exit_bearing"`
	ManeuverModifier *string        `json:"maneuver_modifier"`
	Mode             *string        `json:"mode"`
	Intersections    []Intersection `json:"intersections"`
}

type Leg struct {
	Summary  string  `json:"summary"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []Step  `json:"steps"`
}

type OptimizedRouteResponse struct {
	OptimizedRoute            []RoutePoint         `json:"optimized_route"`
	TotalPredictedTimeSeconds float64              `json:"total_predicted_time_seconds"`
	TotalDistanceMeters       float64              `json:"total_distance_meters"`
	Message                   string               `json:"message"`
	Degraded                  bool                 `json:"degraded"`
	SegmentsDetails           []RouteSegmentDetail `json:"segments_details"`
	FullRouteGeometry         *RouteGeometry       `json:"full_route_geometry"`
	FullRouteLegs             []Leg                `json:"full_route_legs"`
}
