package domain

import "math"

// Sentinel replaces any distance or duration that is infinite, NaN or negative.
// It dominates any real route and still fits the solver's integer scaling.
const Sentinel = 1_000_000_000.0

// Estimate holds the resolved travel metrics for one ordered pair.
// Available is false when the routing provider produced no route.
type Estimate struct {
	Distance  float64
	Duration  float64
	Available bool
	Predicted bool
}

// Sanitize maps non-finite and negative values to Sentinel.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Sentinel
	}
	return v
}

// Unavailable returns the estimate recorded for a pair the provider could not route.
func Unavailable() Estimate {
	return Estimate{Distance: Sentinel, Duration: Sentinel}
}

// Reachable reports whether the estimate can be used as a real edge.
func (e Estimate) Reachable() bool {
	return e.Available && e.Distance < Sentinel && e.Duration < Sentinel
}
