package cache

import (
	"delivery-route-optimizer/internal/domain"
	"time"
)

// groupByOrigin buckets keys by origin so each origin is one lookup.
// Duplicate keys are dropped; origins keep first-seen order.
func groupByOrigin(keys []domain.PairKey) ([]domain.Coordinates, map[domain.Coordinates][]domain.Coordinates) {
	seen := make(map[domain.PairKey]struct{}, len(keys))
	origins := make([]domain.Coordinates, 0)
	byOrigin := make(map[domain.Coordinates][]domain.Coordinates)

	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		if _, ok := byOrigin[k.From]; !ok {
			origins = append(origins, k.From)
		}
		byOrigin[k.From] = append(byOrigin[k.From], k.To)
	}

	return origins, byOrigin
}

// cutoff returns the oldest fetched_at (unix seconds) still considered fresh.
func cutoff(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(-ttl).Unix()
}
