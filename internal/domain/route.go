package domain

import "math"

// Segment is one leg between consecutive route points, in real units.
// Unavailable segments carry +Inf metrics and are left out of route totals.
type Segment struct {
	From            Point
	To              Point
	DurationSeconds float64
	DistanceMeters  float64
	Available       bool
}

// UnavailableSegment builds a segment for a pair with no usable estimate.
func UnavailableSegment(from, to Point) Segment {
	return Segment{
		From:            from,
		To:              to,
		DurationSeconds: math.Inf(1),
		DistanceMeters:  math.Inf(1),
	}
}

// Intersection is a crossing passed during a turn-by-turn step.
type Intersection struct {
	Location [2]float64
	Bearings []int
	Entry    []bool
	In       *int
	Out      *int
}

// Step is a single turn-by-turn instruction.
type Step struct {
	Instruction   string
	Name          string
	Distance      float64
	Duration      float64
	Type          string
	Modifier      string
	ExitBearing   *float64
	Mode          string
	Intersections []Intersection
}

// Leg is the portion of a full route between two consecutive waypoints.
type Leg struct {
	Summary  string
	Distance float64
	Duration float64
	Steps    []Step
}

// Represents the optimized delivery route for a single vehicle.
// It starts at the current location, visits every order exactly once and
// ends at the warehouse. Totals are sums of real segment metrics, never the
// normalized objective.
type Route struct {
	Points               []Point
	Segments             []Segment
	TotalDurationSeconds float64
	TotalDistanceMeters  float64
	TotalCost            float64
	Geometry             string
	Legs                 []Leg
	Degraded             bool
	Message              string
}
