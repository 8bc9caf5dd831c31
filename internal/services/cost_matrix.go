package services

import (
	"delivery-route-optimizer/internal/domain"
	"math"
)

// BuildCostMatrix combines normalized duration and distance into one cost per
// ordered pair. The weighting must already be normalized.
//
// Maxima are taken over reachable estimates only and floored at 1. Pairs
// without a reachable estimate cost +Inf; the diagonal is 0.
func BuildCostMatrix(points []domain.Point, table EstimateTable, w domain.Weighting) [][]float64 {
	n := len(points)

	maxDistance, maxDuration := 1.0, 1.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			e, ok := table.Lookup(points[i], points[j])
			if !ok || !e.Reachable() {
				continue
			}
			maxDistance = math.Max(maxDistance, e.Distance)
			maxDuration = math.Max(maxDuration, e.Duration)
		}
	}

	costs := make([][]float64, n)
	for i := 0; i < n; i++ {
		costs[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			e, ok := table.Lookup(points[i], points[j])
			if !ok || !e.Reachable() {
				costs[i][j] = math.Inf(1)
				continue
			}
			costs[i][j] = w.Time*unit(e.Duration/maxDuration) + w.Distance*unit(e.Distance/maxDistance)
		}
	}

	return costs
}

func unit(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
