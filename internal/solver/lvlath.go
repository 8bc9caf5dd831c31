package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/tsp"
)

// Lvlath solves the path problem with lvlath's Held-Karp TSP solver.
//
// The path is closed into a cycle: End returns to Start at no cost and every
// other arc entering Start or leaving End is removed, so each tour of the
// cycle graph is a Start..End path followed by the free return arc.
type Lvlath struct{}

func (Lvlath) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := p.validate(); err != nil {
		return Solution{}, err
	}
	if sol, ok, err := p.trivial(); ok {
		return sol, err
	}
	if p.size() > ExactMaxNodes {
		return Solution{}, fmt.Errorf("%w: lvlath exact solver supports at most %d nodes, got %d", ErrInvalidProblem, ExactMaxNodes, p.size())
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}

	dist, err := closedTour(p)
	if err != nil {
		return Solution{}, fmt.Errorf("solver: lvlath: build matrix: %w", err)
	}

	opts := tsp.DefaultOptions()
	opts.Algo = tsp.ExactHeldKarp
	opts.StartVertex = p.Start
	opts.Symmetric = false

	res, err := tsp.SolveWithMatrix(dist, nil, opts)
	switch {
	case errors.Is(err, tsp.ErrIncompleteGraph):
		return Solution{}, ErrInfeasible
	case err != nil:
		return Solution{}, fmt.Errorf("solver: lvlath: %w", err)
	}

	order, ok := openTour(p, res.Tour)
	if !ok || !Feasible(p, order) {
		return Solution{}, ErrInfeasible
	}
	return Solution{Order: order, Cost: PathCost(p, order)}, nil
}

// closedTour builds the cycle graph. Removed arcs are +Inf, which lvlath
// treats as missing edges. Forbidden arcs of the path problem stay finite so
// the optimum reveals whether one is needed.
func closedTour(p Problem) (*matrix.Dense, error) {
	n := p.size()
	dist, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var w float64
			switch {
			case i == j:
				w = 0
			case i == p.End && j == p.Start:
				w = 0
			case i == p.End || j == p.Start:
				w = math.Inf(1)
			default:
				w = float64(p.arc(i, j))
			}
			if err := dist.Set(i, j, w); err != nil {
				return nil, err
			}
		}
	}

	return dist, nil
}

// openTour rotates a closed tour to begin at Start and drops the return arc.
// A tour reported in the opposite direction is flipped.
func openTour(p Problem, tour []int) ([]int, bool) {
	n := p.size()
	if len(tour) == n+1 && tour[0] == tour[n] {
		tour = tour[:n]
	}
	if len(tour) != n {
		return nil, false
	}

	at := slices.Index(tour, p.Start)
	if at < 0 {
		return nil, false
	}
	order := make([]int, 0, n)
	order = append(order, tour[at:]...)
	order = append(order, tour[:at]...)

	if order[n-1] != p.End {
		slices.Reverse(order[1:])
	}
	return order, order[n-1] == p.End
}
