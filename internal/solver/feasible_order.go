package solver

import (
	"cmp"
	"slices"
)

// backtrackBudget bounds node expansions in feasibleOrder.
const backtrackBudget = 1 << 22

// feasibleOrder searches depth-first for a path that uses no forbidden arc,
// trying the cheapest arc first. exhausted reports that the whole tree was
// searched without a result, which proves the problem infeasible.
func (s *search) feasibleOrder() (order []int, found, exhausted bool) {
	p := s.p
	n := p.size()

	used := make([]bool, n)
	used[p.Start] = true
	used[p.End] = true
	path := make([]int, 1, n)
	path[0] = p.Start

	expansions := 0
	aborted := false

	var extend func(tail int) bool
	extend = func(tail int) bool {
		if len(path) == n-1 {
			if p.forbidden(tail, p.End) {
				return false
			}
			path = append(path, p.End)
			return true
		}

		expansions++
		if expansions > backtrackBudget || (expansions%1024 == 0 && s.expired()) {
			aborted = true
			return false
		}

		for _, next := range s.successors(tail, used) {
			used[next] = true
			path = append(path, next)
			if s.viable(used, next) && extend(next) {
				return true
			}
			if aborted {
				return false
			}
			path = path[:len(path)-1]
			used[next] = false
		}
		return false
	}

	if extend(p.Start) {
		return path, true, false
	}
	return nil, false, !aborted
}

// successors lists unvisited interior nodes reachable from tail, cheapest first.
func (s *search) successors(tail int, used []bool) []int {
	next := make([]int, 0, len(used))
	for v := range used {
		if !used[v] && !s.p.forbidden(tail, v) {
			next = append(next, v)
		}
	}
	slices.SortStableFunc(next, func(a, b int) int {
		return cmp.Compare(s.p.arc(tail, a), s.p.arc(tail, b))
	})
	return next
}

// viable reports whether every node still to be visited can be entered and
// left over allowed arcs once the path ends at tail.
func (s *search) viable(used []bool, tail int) bool {
	p := s.p
	n := p.size()

	for v := 0; v < n; v++ {
		if used[v] && v != p.End {
			continue
		}
		in, out := false, v == p.End
		for u := 0; u < n && !(in && out); u++ {
			if u == v {
				continue
			}
			free := !used[u]
			if !in && (u == tail || free) && !p.forbidden(u, v) {
				in = true
			}
			if !out && (u == p.End || free) && !p.forbidden(v, u) {
				out = true
			}
		}
		if !in || !out {
			return false
		}
	}
	return true
}
