package solver

// PathCheapestArc builds a first solution by extending the path from Start
// with the cheapest arc to an unvisited node, then closing at End.
//
// Arcs to forbidden nodes are only taken when nothing else is left, so the
// result is always a complete order even when it is infeasible.
func PathCheapestArc(p Problem) []int {
	n := p.size()
	order := make([]int, 0, n)
	order = append(order, p.Start)

	remaining := make(map[int]struct{}, n)
	for _, v := range p.interior() {
		remaining[v] = struct{}{}
	}

	current := p.Start
	for len(remaining) > 0 {
		best := -1
		var bestCost int64
		for v := range remaining {
			c := p.arc(current, v)
			// Tie-breaker ensures deterministic ordering when costs are equal.
			if best == -1 || c < bestCost || (c == bestCost && v < best) {
				best = v
				bestCost = c
			}
		}

		order = append(order, best)
		delete(remaining, best)
		current = best
	}

	if n > 1 {
		order = append(order, p.End)
	}
	return order
}
