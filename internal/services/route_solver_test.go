package services

import (
	"context"
	"delivery-route-optimizer/internal/adapters/directions"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/solver"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSolver struct {
	sol solver.Solution
	err error
}

func (s stubSolver) Solve(ctx context.Context, p solver.Problem) (solver.Solution, error) {
	return s.sol, s.err
}

func randomTable(seed int64, points []domain.Point) EstimateTable {
	rng := rand.New(rand.NewSource(seed))
	table := make(EstimateTable)
	for i, from := range points {
		for j, to := range points {
			if i == j {
				continue
			}
			table[domain.PairKey{From: from.Coords, To: to.Coords}] = domain.Estimate{
				Distance:  100 + rng.Float64()*9000,
				Duration:  30 + rng.Float64()*900,
				Available: true,
			}
		}
	}
	return table
}

func gridPoints(n int) []domain.Point {
	orders := make([]domain.Order, n)
	for i := range orders {
		orders[i] = domain.Order{ID: string(rune('a' + i)), Coords: domain.Coordinates{Lon: 106 + float64(i)/100, Lat: 10 + float64(i)/50}, Weight: 1}
	}
	return domain.NewPointSet(current, orders, warehouse)
}

func TestBuildCostMatrixNormalizesIntoUnitRange(t *testing.T) {
	points := gridPoints(5)
	for seed := int64(1); seed <= 5; seed++ {
		costs := BuildCostMatrix(points, randomTable(seed, points), domain.Weighting{Time: 0.3, Distance: 0.7})

		for i := range costs {
			assert.Zero(t, costs[i][i])
			for j, c := range costs[i] {
				assert.GreaterOrEqual(t, c, 0.0, "cost[%d][%d]", i, j)
				assert.LessOrEqual(t, c, 1.0, "cost[%d][%d]", i, j)
			}
		}
	}
}

func TestBuildCostMatrixSingleDimensionRanking(t *testing.T) {
	points := gridPoints(4)
	table := randomTable(7, points)

	type pair struct{ i, j int }
	var pairs []pair
	for i := range points {
		for j := range points {
			if i != j {
				pairs = append(pairs, pair{i, j})
			}
		}
	}

	check := func(w domain.Weighting, metric func(domain.Estimate) float64) {
		costs := BuildCostMatrix(points, table, w)
		byCost := append([]pair(nil), pairs...)
		sort.SliceStable(byCost, func(a, b int) bool {
			return costs[byCost[a].i][byCost[a].j] < costs[byCost[b].i][byCost[b].j]
		})
		byMetric := append([]pair(nil), pairs...)
		sort.SliceStable(byMetric, func(a, b int) bool {
			ea, _ := table.Lookup(points[byMetric[a].i], points[byMetric[a].j])
			eb, _ := table.Lookup(points[byMetric[b].i], points[byMetric[b].j])
			return metric(ea) < metric(eb)
		})
		assert.Equal(t, byMetric, byCost)
	}

	check(domain.Weighting{Time: 1}, func(e domain.Estimate) float64 { return e.Duration })
	check(domain.Weighting{Distance: 1}, func(e domain.Estimate) float64 { return e.Distance })
}

func TestBuildCostMatrixUnreachablePairs(t *testing.T) {
	points := trianglePoints()
	table := EstimateTable{
		{From: current, To: orderA}:    {Distance: 1000, Duration: 100, Available: true},
		{From: orderA, To: warehouse}:  {Distance: 2000, Duration: 400, Available: true},
		{From: current, To: warehouse}: domain.Unavailable(),
	}

	costs := BuildCostMatrix(points, table, domain.Weighting{Time: 0.5, Distance: 0.5})

	assert.True(t, math.IsInf(costs[0][2], 1))
	assert.True(t, math.IsInf(costs[1][0], 1), "missing pair")
	assert.InDelta(t, 1.0, costs[1][2], 1e-12, "maximum ignores the sentinel")
	assert.InDelta(t, 0.5*0.25+0.5*0.5, costs[0][1], 1e-12)
}

func TestBuildCostMatrixFloorsMaximaAtOne(t *testing.T) {
	points := trianglePoints()
	table := EstimateTable{
		{From: current, To: orderA}: {Distance: 0.5, Duration: 0.25, Available: true},
	}

	costs := BuildCostMatrix(points, table, domain.Weighting{Time: 0.5, Distance: 0.5})
	assert.InDelta(t, 0.5*0.25+0.5*0.5, costs[0][1], 1e-12)
}

func TestScaleCostMatrix(t *testing.T) {
	got := ScaleCostMatrix([][]float64{
		{0, 0.5, math.Inf(1)},
		{-2, 0, math.NaN()},
		{1e12, 0.0014, 0},
	})

	assert.Equal(t, [][]int64{
		{0, 500, solver.MaxArcCost},
		{0, 0, solver.MaxArcCost},
		{solver.MaxArcCost, 1, 0},
	}, got)
}

func TestRouteSolverAdapterIsRepeatable(t *testing.T) {
	points := gridPoints(6)
	costs := BuildCostMatrix(points, randomTable(3, points), domain.Weighting{Time: 0.5, Distance: 0.5})
	a := &RouteSolverAdapter{Solver: solver.Auto{}}

	first, err := a.Solve(context.Background(), costs)
	require.NoError(t, err)
	second, err := a.Solve(context.Background(), costs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, first.Order[0])
	assert.Equal(t, len(points)-1, first.Order[len(first.Order)-1])
	assert.InDelta(t, pathCost(costs, first.Order), first.Cost, 1e-12)
}

func TestRouteSolverAdapterInvalidOutputFallsBack(t *testing.T) {
	costs := BuildCostMatrix(trianglePoints(), EstimateTable{}, domain.Weighting{Time: 1})
	for i := range costs {
		for j := range costs[i] {
			if i != j {
				costs[i][j] = 0.25
			}
		}
	}

	tests := [][]int{
		{2, 1, 0},
		{0, 1},
		{0, 0, 2},
		{0, 7, 2},
	}
	for _, order := range tests {
		a := &RouteSolverAdapter{Solver: stubSolver{sol: solver.Solution{Order: order}}}
		got, err := a.Solve(context.Background(), costs)
		require.NoError(t, err)

		assert.Equal(t, []int{0, 1, 2}, got.Order, "order %v", order)
		assert.True(t, got.Degraded)
		assert.InDelta(t, 0.5, got.Cost, 1e-12)
	}
}

func TestRouteSolverAdapterInfeasible(t *testing.T) {
	a := &RouteSolverAdapter{Solver: stubSolver{err: solver.ErrInfeasible}}

	_, err := a.Solve(context.Background(), [][]float64{{0, 1}, {1, 0}})
	assert.ErrorIs(t, err, ErrOptimizationFailed)
	assert.ErrorIs(t, err, solver.ErrInfeasible)
}

func TestAssembleRouteMissingSegment(t *testing.T) {
	points := trianglePoints()
	table := EstimateTable{
		{From: current, To: orderA}: {Distance: 1000, Duration: 100, Available: true},
	}

	route, err := AssembleRoute(context.Background(), nil, points, []int{0, 1, 2}, table, true)
	require.NoError(t, err)

	require.Len(t, route.Segments, 2)
	assert.True(t, route.Segments[0].Available)
	assert.False(t, route.Segments[1].Available)
	assert.True(t, math.IsInf(route.Segments[1].DurationSeconds, 1))
	assert.Equal(t, 1000.0, route.TotalDistanceMeters)
	assert.Equal(t, 100.0, route.TotalDurationSeconds)
}

func TestAssembleRouteFetchesFullGeometryOnce(t *testing.T) {
	provider := directions.NewMockProvider(triangle())
	provider.Geometry = "encoded"

	route, err := AssembleRoute(context.Background(), provider, trianglePoints(), []int{0, 1, 2}, EstimateTable{}, true)
	require.NoError(t, err)

	queries := provider.Queries()
	require.Len(t, queries, 1)
	assert.Len(t, queries[0].Coordinates, 3)
	assert.True(t, queries[0].Steps)
	assert.Equal(t, "encoded", route.Geometry)
}

func TestAssembleRouteRejectsBadIndex(t *testing.T) {
	_, err := AssembleRoute(context.Background(), nil, trianglePoints(), []int{0, 5, 2}, EstimateTable{}, false)
	assert.Error(t, err)
}
