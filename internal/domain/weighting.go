package domain

import (
	"errors"
	"math"
)

var ErrInvalidWeighting = errors.New("total weights for time and distance cannot be zero")

// Weighting balances travel time against travel distance.
type Weighting struct {
	Time     float64
	Distance float64
}

// Normalize rescales the weights so they sum to 1.
func (w Weighting) Normalize() (Weighting, error) {
	if math.IsNaN(w.Time) || math.IsNaN(w.Distance) || w.Time < 0 || w.Distance < 0 {
		return Weighting{}, ErrInvalidWeighting
	}

	total := w.Time + w.Distance
	if total == 0 || math.IsInf(total, 0) {
		return Weighting{}, ErrInvalidWeighting
	}

	return Weighting{Time: w.Time / total, Distance: w.Distance / total}, nil
}
