package services

import (
	"context"
	"delivery-route-optimizer/internal/adapters/directions"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	value float64
	err   error

	mu       sync.Mutex
	features []ports.Features
}

func (p *stubPredictor) Predict(ctx context.Context, f ports.Features) (float64, error) {
	p.mu.Lock()
	p.features = append(p.features, f)
	p.mu.Unlock()
	return p.value, p.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[domain.PairKey]ports.CachedEstimate
	fail    bool
	puts    int
}

func (c *memoryCache) GetMany(ctx context.Context, keys []domain.PairKey) (map[domain.PairKey]ports.CachedEstimate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errors.New("cache down")
	}
	out := make(map[domain.PairKey]ports.CachedEstimate)
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			out[k] = e
		}
	}
	return out, nil
}

func (c *memoryCache) PutMany(ctx context.Context, entries map[domain.PairKey]ports.CachedEstimate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("cache down")
	}
	if c.entries == nil {
		c.entries = make(map[domain.PairKey]ports.CachedEstimate)
	}
	for k, e := range entries {
		c.entries[k] = e
	}
	c.puts++
	return nil
}

func triangle() []directions.MockPair {
	return symmetric(
		directions.MockPair{From: current, To: orderA, Meters: 1000, Seconds: 100},
		directions.MockPair{From: orderA, To: warehouse, Meters: 2000, Seconds: 200},
		directions.MockPair{From: current, To: warehouse, Meters: 2500, Seconds: 250},
	)
}

func trianglePoints() []domain.Point {
	return domain.NewPointSet(current, []domain.Order{{ID: "A", Coords: orderA, Weight: 3.5}}, warehouse)
}

func TestCollectCoversEveryOrderedPair(t *testing.T) {
	provider := directions.NewMockProvider(triangle())
	c := &EstimateCollector{Provider: provider, Concurrency: 2}

	table, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	assert.Len(t, table, 6)
	assert.Equal(t, 6, provider.PairQueries())
	assert.Equal(t, domain.Estimate{Distance: 2000, Duration: 200, Available: true},
		table[domain.PairKey{From: orderA, To: warehouse}])

	for _, q := range provider.Queries() {
		assert.Equal(t, ports.OverviewSimplified, q.Overview)
		assert.False(t, q.Steps)
	}
}

func TestCollectProviderFailureIsUnavailable(t *testing.T) {
	pairs := triangle()[:4]
	provider := directions.NewMockProvider(pairs)
	predictor := &stubPredictor{value: 1}
	c := &EstimateCollector{Provider: provider, Predictor: predictor}

	table, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	e := table[domain.PairKey{From: current, To: warehouse}]
	assert.False(t, e.Available)
	assert.Equal(t, domain.Sentinel, e.Distance)
	assert.Equal(t, domain.Sentinel, e.Duration)
	assert.Len(t, predictor.features, 4, "failed pairs skip the predictor")
}

func TestCollectSanitizesProviderValues(t *testing.T) {
	provider := directions.NewMockProvider([]directions.MockPair{
		{From: current, To: orderA, Meters: math.NaN(), Seconds: 100},
		{From: orderA, To: current, Meters: -1, Seconds: 100},
		{From: current, To: warehouse, Meters: 100, Seconds: math.Inf(1)},
	})
	c := &EstimateCollector{Provider: provider}

	table, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	for key, e := range table {
		assert.False(t, math.IsNaN(e.Distance) || math.IsInf(e.Distance, 0) || e.Distance < 0, "distance %s = %v", key, e.Distance)
		assert.False(t, math.IsNaN(e.Duration) || math.IsInf(e.Duration, 0) || e.Duration < 0, "duration %s = %v", key, e.Duration)
	}
	assert.Equal(t, domain.Sentinel, table[domain.PairKey{From: current, To: orderA}].Distance)
	assert.Equal(t, domain.Sentinel, table[domain.PairKey{From: orderA, To: current}].Distance)
	assert.Equal(t, domain.Sentinel, table[domain.PairKey{From: current, To: warehouse}].Duration)
	assert.False(t, table[domain.PairKey{From: current, To: orderA}].Reachable())
}

func TestCollectPredictionResolution(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		err       error
		want      float64
		predicted bool
	}{
		{name: "faster prediction wins", value: 60, want: 60, predicted: true},
		{name: "slower prediction capped", value: 500, want: 100, predicted: true},
		{name: "negative falls back", value: -5, want: 100},
		{name: "nan falls back", value: math.NaN(), want: 100},
		{name: "inf falls back", value: math.Inf(1), want: 100},
		{name: "error falls back", value: 10, err: errors.New("model down"), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := directions.NewMockProvider(triangle())
			c := &EstimateCollector{Provider: provider, Predictor: &stubPredictor{value: tt.value, err: tt.err}}

			table, err := c.Collect(context.Background(), trianglePoints())
			require.NoError(t, err)

			e := table[domain.PairKey{From: current, To: orderA}]
			assert.Equal(t, tt.want, e.Duration)
			assert.Equal(t, tt.predicted, e.Predicted)
			assert.Equal(t, 1000.0, e.Distance)
		})
	}
}

func TestCollectPredictorFeatures(t *testing.T) {
	provider := directions.NewMockProvider(triangle())
	predictor := &stubPredictor{value: 1}
	sunday := time.Date(2026, 1, 4, 17, 30, 0, 0, time.UTC)
	c := &EstimateCollector{
		Provider:  provider,
		Predictor: predictor,
		Now:       func() time.Time { return sunday },
	}

	_, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	byDest := make(map[domain.PairKey]ports.Features)
	for _, f := range predictor.features {
		byDest[domain.PairKey{
			From: domain.Coordinates{Lon: f.OriginLng, Lat: f.OriginLat},
			To:   domain.Coordinates{Lon: f.DestinationLng, Lat: f.DestinationLat},
		}] = f
	}

	toOrder := byDest[domain.PairKey{From: current, To: orderA}]
	assert.Equal(t, 3.5, toOrder.Weight)
	assert.Equal(t, 17, toOrder.Hour)
	assert.Equal(t, 6, toOrder.Day)
	assert.Equal(t, 1000.0, toOrder.ShippingDistance)

	toWarehouse := byDest[domain.PairKey{From: orderA, To: warehouse}]
	assert.Zero(t, toWarehouse.Weight)
}

func TestCollectIdenticalCoordinates(t *testing.T) {
	provider := directions.NewMockProvider(triangle())
	points := domain.NewPointSet(current, []domain.Order{
		{ID: "A", Coords: orderA, Weight: 1},
		{ID: "A2", Coords: orderA, Weight: 1},
	}, warehouse)
	c := &EstimateCollector{Provider: provider}

	table, err := c.Collect(context.Background(), points)
	require.NoError(t, err)

	same := table[domain.PairKey{From: orderA, To: orderA}]
	assert.Equal(t, domain.Estimate{Available: true}, same)
	assert.Equal(t, 6, provider.PairQueries(), "duplicate coordinates are fetched once")
}

func TestCollectUsesCache(t *testing.T) {
	cache := &memoryCache{}
	provider := directions.NewMockProvider(triangle())
	c := &EstimateCollector{Provider: provider, Cache: cache}

	first, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts)
	assert.Len(t, cache.entries, 6)

	again := directions.NewMockProvider(nil)
	c.Provider = again
	second, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, again.PairQueries())
	assert.Equal(t, 1, cache.puts, "cache hits are not written back")
}

func TestCollectIgnoresCacheErrors(t *testing.T) {
	provider := directions.NewMockProvider(triangle())
	c := &EstimateCollector{Provider: provider, Cache: &memoryCache{fail: true}}

	table, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)
	assert.Len(t, table, 6)
}

func TestCollectMatrixMatchesPairwise(t *testing.T) {
	pairwise := &EstimateCollector{Provider: directions.NewMockProvider(triangle())}
	want, err := pairwise.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	mp := &directions.MockMatrixProvider{MockProvider: directions.NewMockProvider(triangle())}
	batched := &EstimateCollector{Provider: mp, UseMatrix: true}
	got, err := batched.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 1, mp.MatrixCalls())
	assert.Zero(t, mp.PairQueries())
}

func TestCollectMatrixFailureFallsBackToPairs(t *testing.T) {
	mp := &directions.MockMatrixProvider{MockProvider: directions.NewMockProvider(triangle()), FailMatrix: true}
	c := &EstimateCollector{Provider: mp, UseMatrix: true}

	table, err := c.Collect(context.Background(), trianglePoints())
	require.NoError(t, err)

	assert.Len(t, table, 6)
	assert.Equal(t, 6, mp.PairQueries())
}

func TestCollectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &EstimateCollector{Provider: directions.NewMockProvider(triangle())}
	table, err := c.Collect(ctx, trianglePoints())

	assert.Nil(t, table)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWeekdayStartsMonday(t *testing.T) {
	monday := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, weekday(monday))
	assert.Equal(t, 6, weekday(monday.AddDate(0, 0, 6)))
}
