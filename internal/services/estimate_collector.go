package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultEstimateConcurrency = 8

var errNoMatrixCell = errors.New("matrix cell has no route")

// EstimateTable holds the resolved estimate for every ordered coordinate pair
// of one request.
type EstimateTable map[domain.PairKey]domain.Estimate

// Lookup returns the estimate for travelling from one point to another.
func (t EstimateTable) Lookup(from, to domain.Point) (domain.Estimate, bool) {
	e, ok := t[domain.PairKey{From: from.Coords, To: to.Coords}]
	return e, ok
}

// EstimateCollector gathers pairwise travel estimates for a point set.
// Provider failures never fail the collection; the affected pair is recorded
// as unavailable.
type EstimateCollector struct {
	Provider    ports.RoutingProvider
	Predictor   ports.DurationPredictor
	Cache       ports.EstimateCache
	Concurrency int
	UseMatrix   bool
	Now         func() time.Time
}

type pairJob struct {
	key  domain.PairKey
	dest domain.Point
}

// fetchOutcome is the result of one provider lookup: either raw metrics or
// the reason there are none.
type fetchOutcome struct {
	raw    ports.CachedEstimate
	reason error
	done   bool
	fresh  bool
}

func (o fetchOutcome) ok() bool { return o.done && o.reason == nil }

// Collect returns a complete estimate table covering every ordered pair of
// distinct points. Only a cancelled context makes it fail.
func (c *EstimateCollector) Collect(ctx context.Context, points []domain.Point) (_ EstimateTable, err error) {
	defer obs.Time(ctx, "services.CollectEstimates")(&err)

	if c.Provider == nil {
		return nil, errors.New("collect estimates: provider is nil")
	}

	jobs := pairJobs(points)
	outcomes := make([]fetchOutcome, len(jobs))

	for i, j := range jobs {
		if j.key.Same() {
			outcomes[i] = fetchOutcome{done: true}
		}
	}

	c.loadCached(ctx, jobs, outcomes)
	c.loadMatrix(ctx, points, jobs, outcomes)

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	at := now()

	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultEstimateConcurrency
	}

	estimates := make([]domain.Estimate, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !outcomes[i].done {
				outcomes[i] = c.fetch(gctx, jobs[i].key)
			}
			estimates[i] = c.resolve(gctx, jobs[i], outcomes[i], at)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect estimates: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect estimates: %w", err)
	}

	c.storeFresh(ctx, jobs, outcomes)

	table := make(EstimateTable, len(jobs))
	for i, j := range jobs {
		table[j.key] = estimates[i]
	}

	return table, nil
}

// pairJobs lists every ordered pair of distinct points once per coordinate pair.
func pairJobs(points []domain.Point) []pairJob {
	seen := make(map[domain.PairKey]struct{}, len(points)*len(points))
	jobs := make([]pairJob, 0, len(points)*len(points))

	for i, from := range points {
		for j, to := range points {
			if i == j {
				continue
			}
			key := domain.PairKey{From: from.Coords, To: to.Coords}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			jobs = append(jobs, pairJob{key: key, dest: to})
		}
	}

	return jobs
}

func (c *EstimateCollector) loadCached(ctx context.Context, jobs []pairJob, outcomes []fetchOutcome) {
	if c.Cache == nil {
		return
	}

	keys := make([]domain.PairKey, 0, len(jobs))
	for i, j := range jobs {
		if !outcomes[i].done {
			keys = append(keys, j.key)
		}
	}
	if len(keys) == 0 {
		return
	}

	cached, err := c.Cache.GetMany(ctx, keys)
	if err != nil {
		obs.Logger(ctx).WithError(err).Warn("estimate cache lookup failed; fetching from provider")
		return
	}

	for i, j := range jobs {
		if outcomes[i].done {
			continue
		}
		if e, ok := cached[j.key]; ok {
			outcomes[i] = fetchOutcome{raw: e, done: true}
		}
	}
}

// loadMatrix fills pending outcomes from a single table request when the
// provider supports it. Any failure leaves them for pairwise fetching.
func (c *EstimateCollector) loadMatrix(ctx context.Context, points []domain.Point, jobs []pairJob, outcomes []fetchOutcome) {
	if !c.UseMatrix {
		return
	}
	mp, ok := c.Provider.(ports.MatrixProvider)
	if !ok {
		return
	}

	pending := 0
	for _, o := range outcomes {
		if !o.done {
			pending++
		}
	}
	if pending == 0 {
		return
	}

	coords := make([]domain.Coordinates, 0, len(points))
	index := make(map[domain.Coordinates]int, len(points))
	for _, p := range points {
		if _, ok := index[p.Coords]; ok {
			continue
		}
		index[p.Coords] = len(coords)
		coords = append(coords, p.Coords)
	}

	cells, err := mp.Matrix(ctx, coords)
	if err != nil {
		obs.Logger(ctx).WithError(err).Warn("matrix request failed; falling back to pairwise requests")
		return
	}
	if len(cells) != len(coords) {
		obs.Logger(ctx).WithField("rows", len(cells)).Warn("matrix has wrong shape; falling back to pairwise requests")
		return
	}
	for _, row := range cells {
		if len(row) != len(coords) {
			obs.Logger(ctx).WithField("cols", len(row)).Warn("matrix has wrong shape; falling back to pairwise requests")
			return
		}
	}

	for i, j := range jobs {
		if outcomes[i].done {
			continue
		}
		cell := cells[index[j.key.From]][index[j.key.To]]
		if !cell.OK {
			outcomes[i] = fetchOutcome{reason: errNoMatrixCell, done: true}
			continue
		}
		outcomes[i] = fetchOutcome{
			raw:   ports.CachedEstimate{DistanceMeters: cell.DistanceMeters, DurationSeconds: cell.DurationSeconds},
			done:  true,
			fresh: true,
		}
	}
}

func (c *EstimateCollector) fetch(ctx context.Context, key domain.PairKey) fetchOutcome {
	r, err := c.Provider.Route(ctx, ports.RouteQuery{
		Coordinates: []domain.Coordinates{key.From, key.To},
		Overview:    ports.OverviewSimplified,
		Steps:       false,
	})
	if err != nil {
		obs.Logger(ctx).WithFields(log.Fields{
			"pair": key.String(),
		}).WithError(err).Warn("routing provider gave no estimate")
		return fetchOutcome{reason: err, done: true}
	}

	return fetchOutcome{
		raw:   ports.CachedEstimate{DistanceMeters: r.DistanceMeters, DurationSeconds: r.DurationSeconds},
		done:  true,
		fresh: true,
	}
}

// resolve turns a provider outcome into the estimate used downstream.
func (c *EstimateCollector) resolve(ctx context.Context, job pairJob, o fetchOutcome, at time.Time) domain.Estimate {
	if !o.ok() {
		return domain.Unavailable()
	}

	est := domain.Estimate{
		Distance:  domain.Sanitize(o.raw.DistanceMeters),
		Duration:  domain.Sanitize(o.raw.DurationSeconds),
		Available: true,
	}

	if c.Predictor == nil || job.key.Same() || !est.Reachable() {
		return est
	}

	features := ports.Features{
		OriginLat:        job.key.From.Lat,
		OriginLng:        job.key.From.Lon,
		DestinationLat:   job.key.To.Lat,
		DestinationLng:   job.key.To.Lon,
		Weight:           job.dest.DestinationWeight(),
		Hour:             at.Hour(),
		Day:              weekday(at),
		ShippingDistance: est.Distance,
	}

	predicted, err := c.Predictor.Predict(ctx, features)
	duration, used := ResolveDuration(est.Duration, predicted, err)
	if err != nil {
		obs.Logger(ctx).WithField("pair", job.key.String()).WithError(err).Debug("prediction failed; using provider duration")
	}

	est.Duration = domain.Sanitize(duration)
	est.Predicted = used
	return est
}

// ResolveDuration picks the duration for a pair given the provider value and
// a prediction. Unusable predictions fall back to the provider duration.
func ResolveDuration(providerSeconds, predicted float64, predictErr error) (float64, bool) {
	if predictErr != nil || math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted < 0 {
		return providerSeconds, false
	}
	return math.Max(0, math.Min(predicted, providerSeconds)), true
}

// weekday numbers days from Monday=0 to Sunday=6.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func (c *EstimateCollector) storeFresh(ctx context.Context, jobs []pairJob, outcomes []fetchOutcome) {
	if c.Cache == nil {
		return
	}

	entries := make(map[domain.PairKey]ports.CachedEstimate)
	for i, j := range jobs {
		o := outcomes[i]
		if !o.ok() || !o.fresh {
			continue
		}
		if domain.Sanitize(o.raw.DistanceMeters) == domain.Sentinel || domain.Sanitize(o.raw.DurationSeconds) == domain.Sentinel {
			continue
		}
		entries[j.key] = o.raw
	}
	if len(entries) == 0 {
		return
	}

	if err := c.Cache.PutMany(ctx, entries); err != nil {
		obs.Logger(ctx).WithError(err).Warn("estimate cache write failed")
	}
}
