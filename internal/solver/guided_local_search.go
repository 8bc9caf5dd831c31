package solver

import (
	"context"
	"time"
)

const (
	defaultMaxIterations = 200
	defaultPenaltyFactor = 0.1
	improvementEpsilon   = 1e-9
)

// GuidedLocalSearch improves a path-cheapest-arc first solution with local
// search (relocate, swap, 2-opt reversal) escaping local optima through arc
// penalties. It stops at TimeLimit or after MaxIterations penalty rounds
// counted from the first feasible order, so identical inputs give identical
// results unless the time limit cuts in. While no feasible order is known it
// keeps searching until TimeLimit.
type GuidedLocalSearch struct {
	MaxIterations int
	PenaltyFactor float64
}

type search struct {
	p        Problem
	penalty  [][]int
	lambda   float64
	deadline time.Time
	ctx      context.Context
	scratch  []int
}

func (g GuidedLocalSearch) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := p.validate(); err != nil {
		return Solution{}, err
	}
	if sol, ok, err := p.trivial(); ok {
		return sol, err
	}

	maxIter := g.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	factor := g.PenaltyFactor
	if factor <= 0 {
		factor = defaultPenaltyFactor
	}

	n := p.size()
	s := &search{
		p:       p,
		penalty: make([][]int, n),
		ctx:     ctx,
		scratch: make([]int, n),
	}
	for i := range s.penalty {
		s.penalty[i] = make([]int, n)
	}
	if p.TimeLimit > 0 {
		s.deadline = time.Now().Add(p.TimeLimit)
	}

	order := PathCheapestArc(p)
	if !Feasible(p, order) {
		alt, found, exhausted := s.feasibleOrder()
		switch {
		case found:
			order = alt
		case exhausted:
			return Solution{}, ErrInfeasible
		}
	}
	best := append([]int(nil), order...)
	bestCost := PathCost(p, best)
	feasible := Feasible(p, best)

	// The iteration cap only counts rounds after a feasible order exists;
	// until then the search runs to the deadline.
	infeasibleCap := maxIter * n
	rounds := 0
	for iter := 0; ; iter++ {
		if feasible && rounds >= maxIter {
			break
		}
		if !feasible && s.deadline.IsZero() && iter >= infeasibleCap {
			break
		}

		s.descend(order)
		if err := ctx.Err(); err != nil {
			return Solution{}, err
		}

		if c := PathCost(p, order); c < bestCost {
			bestCost = c
			copy(best, order)
			feasible = Feasible(p, best)
		}
		if feasible {
			rounds++
		}
		if s.expired() {
			break
		}

		if s.lambda == 0 {
			s.lambda = factor * float64(PathCost(p, order)) / float64(n-1)
			if s.lambda == 0 {
				// Zero-cost local optimum cannot be improved.
				break
			}
		}
		s.penalize(order)
	}

	if !feasible {
		return Solution{}, ErrInfeasible
	}
	return Solution{Order: best, Cost: bestCost}, nil
}

func (s *search) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

func (s *search) augmented(order []int) float64 {
	var total float64
	for k := 0; k+1 < len(order); k++ {
		i, j := order[k], order[k+1]
		total += float64(s.p.arc(i, j)) + s.lambda*float64(s.penalty[i][j])
	}
	return total
}

// descend applies first-improvement moves until none improves the augmented cost.
func (s *search) descend(order []int) {
	for !s.expired() && s.step(order) {
	}
}

func (s *search) step(order []int) bool {
	n := len(order)
	cur := s.augmented(order)
	cand := s.scratch

	try := func() bool {
		if s.augmented(cand) < cur-improvementEpsilon {
			copy(order, cand)
			return true
		}
		return false
	}

	for i := 1; i < n-1; i++ {
		for j := 1; j < n-1; j++ {
			if i == j {
				continue
			}
			relocate(cand, order, i, j)
			if try() {
				return true
			}
			if i < j {
				swap(cand, order, i, j)
				if try() {
					return true
				}
				reverse(cand, order, i, j)
				if try() {
					return true
				}
			}
		}
	}
	return false
}

// penalize increments the penalty of the arcs with maximum utility
// cost/(1+penalty) in the current local optimum.
func (s *search) penalize(order []int) {
	maxUtil := -1.0
	for k := 0; k+1 < len(order); k++ {
		i, j := order[k], order[k+1]
		u := float64(s.p.arc(i, j)) / float64(1+s.penalty[i][j])
		if u > maxUtil {
			maxUtil = u
		}
	}
	for k := 0; k+1 < len(order); k++ {
		i, j := order[k], order[k+1]
		if float64(s.p.arc(i, j))/float64(1+s.penalty[i][j]) == maxUtil {
			s.penalty[i][j]++
		}
	}
}

// relocate moves src[from] so that it ends up at index to in dst.
func relocate(dst, src []int, from, to int) {
	v := src[from]
	out := dst[:0]
	out = append(out, src[:from]...)
	out = append(out, src[from+1:]...)
	out = append(out, 0)
	copy(out[to+1:], out[to:])
	out[to] = v
}

func swap(dst, src []int, i, j int) {
	copy(dst, src)
	dst[i], dst[j] = dst[j], dst[i]
}

// reverse copies src into dst with positions i..j reversed (2-opt move).
func reverse(dst, src []int, i, j int) {
	copy(dst, src)
	for i < j {
		dst[i], dst[j] = dst[j], dst[i]
		i++
		j--
	}
}
