package ports

import (
	"context"
	"delivery-route-optimizer/internal/solver"
)

// RouteSolver finds a minimum-cost Hamiltonian path with pinned endpoints.
type RouteSolver interface {
	Solve(ctx context.Context, p solver.Problem) (solver.Solution, error)
}
