package solver

import "context"

// Auto solves small problems exactly and larger ones heuristically.
// Exact defaults to HeldKarp.
type Auto struct {
	Exact     Solver
	Heuristic GuidedLocalSearch
}

func (a Auto) Solve(ctx context.Context, p Problem) (Solution, error) {
	if len(p.Costs) <= ExactMaxNodes {
		exact := a.Exact
		if exact == nil {
			exact = HeldKarp{}
		}
		return exact.Solve(ctx, p)
	}
	return a.Heuristic.Solve(ctx, p)
}
