package directions

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"fmt"
	"sync"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockProvider serves fixed pair estimates and records every query.
// Multi-point queries return the sum of their pair estimates with the
// configured Geometry and one leg per pair.
type MockProvider struct {
	m        map[domain.PairKey]ports.RouteData
	Geometry string
	FailFull bool

	mu      sync.Mutex
	queries []ports.RouteQuery
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[domain.PairKey]ports.RouteData, len(pairs))
	for _, p := range pairs {
		m[domain.PairKey{From: p.From, To: p.To}] = ports.RouteData{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockProvider{m: m}
}

func (p *MockProvider) Route(ctx context.Context, q ports.RouteQuery) (*ports.RouteData, error) {
	p.mu.Lock()
	p.queries = append(p.queries, q)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q.Coordinates) < 2 {
		return nil, fmt.Errorf("mock route: need at least two coordinates")
	}
	if len(q.Coordinates) > 2 && p.FailFull {
		return nil, fmt.Errorf("mock route: %w", ErrNoRoute)
	}

	out := &ports.RouteData{}
	for i := 0; i+1 < len(q.Coordinates); i++ {
		key := domain.PairKey{From: q.Coordinates[i], To: q.Coordinates[i+1]}
		r, ok := p.m[key]
		if !ok {
			return nil, fmt.Errorf("missing pair %s: %w", key, ErrNoRoute)
		}
		out.DistanceMeters += r.DistanceMeters
		out.DurationSeconds += r.DurationSeconds
		if q.Steps {
			out.Legs = append(out.Legs, domain.Leg{Distance: r.DistanceMeters, Duration: r.DurationSeconds})
		}
	}
	if q.Overview == ports.OverviewFull {
		out.Geometry = p.Geometry
	}

	return out, nil
}

// Queries returns a copy of the recorded queries.
func (p *MockProvider) Queries() []ports.RouteQuery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.RouteQuery(nil), p.queries...)
}

// PairQueries counts recorded two-point queries.
func (p *MockProvider) PairQueries() int {
	n := 0
	for _, q := range p.Queries() {
		if len(q.Coordinates) == 2 {
			n++
		}
	}
	return n
}

// MockMatrixProvider adds table lookups to MockProvider.
// Pairs missing from the mock come back as unavailable cells.
type MockMatrixProvider struct {
	*MockProvider
	FailMatrix bool

	matrixCalls int
}

func (p *MockMatrixProvider) Matrix(ctx context.Context, coords []domain.Coordinates) ([][]ports.MatrixCell, error) {
	p.mu.Lock()
	p.matrixCalls++
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.FailMatrix {
		return nil, fmt.Errorf("mock matrix: %w", ErrMatrixTooLarge)
	}

	out := make([][]ports.MatrixCell, len(coords))
	for i, from := range coords {
		out[i] = make([]ports.MatrixCell, len(coords))
		for j, to := range coords {
			if i == j {
				out[i][j] = ports.MatrixCell{OK: true}
				continue
			}
			r, ok := p.m[domain.PairKey{From: from, To: to}]
			if !ok {
				continue
			}
			out[i][j] = ports.MatrixCell{DistanceMeters: r.DistanceMeters, DurationSeconds: r.DurationSeconds, OK: true}
		}
	}
	return out, nil
}

// MatrixCalls reports how many table requests were made.
func (p *MockMatrixProvider) MatrixCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.matrixCalls
}
