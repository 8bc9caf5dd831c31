// Package solver finds minimum-cost open Hamiltonian paths over a complete
// directed graph with a pinned start and end node.
//
// Costs are bounded non-negative integers. Any arc whose cost reaches
// MaxArcCost is treated as missing: a path that needs one is infeasible.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxArcCost is the largest representable arc cost and marks unreachable arcs.
const MaxArcCost int64 = 1_000_000_000

var (
	ErrInfeasible     = errors.New("solver: no feasible route")
	ErrInvalidProblem = errors.New("solver: invalid problem")
)

// Problem is a single-vehicle routing instance.
type Problem struct {
	Costs     [][]int64
	Start     int
	End       int
	TimeLimit time.Duration
}

// Solution is a node order starting at Start and ending at End.
type Solution struct {
	Order []int
	Cost  int64
}

// Solver is implemented by every search backend in this package.
type Solver interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}

func (p Problem) size() int { return len(p.Costs) }

func (p Problem) validate() error {
	n := p.size()
	if n == 0 {
		return fmt.Errorf("%w: empty cost matrix", ErrInvalidProblem)
	}
	for i, row := range p.Costs {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidProblem, i, len(row), n)
		}
	}
	if p.Start < 0 || p.Start >= n || p.End < 0 || p.End >= n {
		return fmt.Errorf("%w: start=%d end=%d out of range for %d nodes", ErrInvalidProblem, p.Start, p.End, n)
	}
	if p.Start == p.End && n > 1 {
		return fmt.Errorf("%w: start and end must differ", ErrInvalidProblem)
	}
	return nil
}

func (p Problem) arc(i, j int) int64 {
	c := p.Costs[i][j]
	if c < 0 {
		return 0
	}
	if c > MaxArcCost {
		return MaxArcCost
	}
	return c
}

func (p Problem) forbidden(i, j int) bool { return p.arc(i, j) >= MaxArcCost }

// interior lists every node except the pinned endpoints, in index order.
func (p Problem) interior() []int {
	nodes := make([]int, 0, p.size())
	for i := 0; i < p.size(); i++ {
		if i != p.Start && i != p.End {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// trivial handles problems with no interior nodes.
func (p Problem) trivial() (Solution, bool, error) {
	switch p.size() {
	case 1:
		return Solution{Order: []int{p.Start}}, true, nil
	case 2:
		if p.forbidden(p.Start, p.End) {
			return Solution{}, true, ErrInfeasible
		}
		return Solution{Order: []int{p.Start, p.End}, Cost: p.arc(p.Start, p.End)}, true, nil
	}
	return Solution{}, false, nil
}

// PathCost sums arc costs along order.
func PathCost(p Problem, order []int) int64 {
	var total int64
	for k := 0; k+1 < len(order); k++ {
		total += p.arc(order[k], order[k+1])
	}
	return total
}

// Feasible reports whether order is a Hamiltonian path from Start to End
// that uses no forbidden arc.
func Feasible(p Problem, order []int) bool {
	n := p.size()
	if len(order) != n || order[0] != p.Start || order[n-1] != p.End {
		return false
	}
	seen := make([]bool, n)
	for k, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
		if k > 0 && p.forbidden(order[k-1], v) {
			return false
		}
	}
	return true
}
