package services

import (
	"context"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"delivery-route-optimizer/internal/solver"
	"errors"
	"fmt"
	"math"
	"time"
)

// CostScale converts normalized float costs to solver integers.
const CostScale = 1000

const DefaultSolverTimeLimit = 15 * time.Second

// ErrOptimizationFailed means no route visits every point with the available
// estimates. Retrying with the same input does not help.
var ErrOptimizationFailed = errors.New("failed to find a feasible route")

// ScaleCostMatrix maps float costs onto the solver's bounded integer range.
// +Inf and NaN become solver.MaxArcCost; negatives become 0.
func ScaleCostMatrix(costs [][]float64) [][]int64 {
	limit := float64(solver.MaxArcCost)

	out := make([][]int64, len(costs))
	for i, row := range costs {
		out[i] = make([]int64, len(row))
		for j, c := range row {
			switch {
			case math.IsNaN(c) || math.IsInf(c, 1):
				out[i][j] = solver.MaxArcCost
			case c <= 0:
				out[i][j] = 0
			default:
				out[i][j] = int64(math.Min(limit, c*CostScale))
			}
		}
	}
	return out
}

// SolvedOrder is a validated visiting order over point indices.
// Cost is summed from the unscaled matrix.
type SolvedOrder struct {
	Order    []int
	Cost     float64
	Degraded bool
}

// RouteSolverAdapter runs a RouteSolver from the first to the last point.
type RouteSolverAdapter struct {
	Solver    ports.RouteSolver
	TimeLimit time.Duration
}

func (a *RouteSolverAdapter) Solve(ctx context.Context, costs [][]float64) (_ SolvedOrder, err error) {
	defer obs.Time(ctx, "services.SolveRoute")(&err)

	if a.Solver == nil {
		return SolvedOrder{}, errors.New("solve route: solver is nil")
	}

	n := len(costs)
	if n < 2 {
		return SolvedOrder{}, fmt.Errorf("solve route: need at least 2 points, got %d", n)
	}

	limit := a.TimeLimit
	if limit <= 0 {
		limit = DefaultSolverTimeLimit
	}

	sol, err := a.Solver.Solve(ctx, solver.Problem{
		Costs:     ScaleCostMatrix(costs),
		Start:     0,
		End:       n - 1,
		TimeLimit: limit,
	})
	if errors.Is(err, solver.ErrInfeasible) {
		return SolvedOrder{}, fmt.Errorf("solve route: %w: %w", ErrOptimizationFailed, err)
	}
	if err != nil {
		return SolvedOrder{}, fmt.Errorf("solve route: %w", err)
	}

	order := sol.Order
	degraded := false
	if !validOrder(order, n) {
		obs.Logger(ctx).WithField("order", order).Error("solver returned an invalid route; using input order")
		order = identityOrder(n)
		degraded = true
	}

	return SolvedOrder{Order: order, Cost: pathCost(costs, order), Degraded: degraded}, nil
}

// validOrder reports whether order is a permutation of 0..n-1 that starts at 0
// and ends at n-1.
func validOrder(order []int, n int) bool {
	if len(order) != n || order[0] != 0 || order[n-1] != n-1 {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func pathCost(costs [][]float64, order []int) float64 {
	total := 0.0
	for k := 0; k+1 < len(order); k++ {
		total += costs[order[k]][order[k+1]]
	}
	return total
}
