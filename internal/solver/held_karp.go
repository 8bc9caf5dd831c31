package solver

import (
	"context"
	"fmt"
	"math"
)

// ExactMaxNodes is the largest problem HeldKarp accepts.
const ExactMaxNodes = 14

// HeldKarp solves the pinned-endpoint path problem exactly with bitmask
// dynamic programming in O(2^m * m^2) for m interior nodes.
type HeldKarp struct{}

func (HeldKarp) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := p.validate(); err != nil {
		return Solution{}, err
	}
	if sol, ok, err := p.trivial(); ok {
		return sol, err
	}
	if p.size() > ExactMaxNodes {
		return Solution{}, fmt.Errorf("%w: held-karp supports at most %d nodes, got %d", ErrInvalidProblem, ExactMaxNodes, p.size())
	}

	nodes := p.interior()
	m := len(nodes)
	full := 1<<m - 1
	const unset = math.MaxInt64

	// dp[mask][k]: cheapest path from Start covering mask, ending at nodes[k].
	dp := make([][]int64, full+1)
	parent := make([][]int8, full+1)
	for mask := range dp {
		dp[mask] = make([]int64, m)
		parent[mask] = make([]int8, m)
		for k := range dp[mask] {
			dp[mask][k] = unset
			parent[mask][k] = -1
		}
	}

	for k, v := range nodes {
		if !p.forbidden(p.Start, v) {
			dp[1<<k][k] = p.arc(p.Start, v)
		}
	}

	for mask := 1; mask <= full; mask++ {
		if mask&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return Solution{}, err
			}
		}
		for k := 0; k < m; k++ {
			cur := dp[mask][k]
			if cur == unset || mask&(1<<k) == 0 {
				continue
			}
			for next := 0; next < m; next++ {
				if mask&(1<<next) != 0 || p.forbidden(nodes[k], nodes[next]) {
					continue
				}
				nm := mask | 1<<next
				c := cur + p.arc(nodes[k], nodes[next])
				if c < dp[nm][next] {
					dp[nm][next] = c
					parent[nm][next] = int8(k)
				}
			}
		}
	}

	best := int64(unset)
	last := -1
	for k, v := range nodes {
		if dp[full][k] == unset || p.forbidden(v, p.End) {
			continue
		}
		c := dp[full][k] + p.arc(v, p.End)
		if c < best {
			best = c
			last = k
		}
	}
	if last < 0 {
		return Solution{}, ErrInfeasible
	}

	order := make([]int, p.size())
	order[0] = p.Start
	order[len(order)-1] = p.End
	mask := full
	for pos := m; pos >= 1; pos-- {
		order[pos] = nodes[last]
		prev := int(parent[mask][last])
		mask &^= 1 << last
		last = prev
	}

	return Solution{Order: order, Cost: best}, nil
}
