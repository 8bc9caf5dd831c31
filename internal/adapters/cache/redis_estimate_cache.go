package cache

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisKeyPrefix = "route_estimate:"

// RedisEstimateCache stores provider pair estimates as JSON values that
// expire after TTL.
type RedisEstimateCache struct {
	Client *redis.Client
	TTL    time.Duration
}

type redisEstimate struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func NewRedisEstimateCache(client *redis.Client, ttl time.Duration) *RedisEstimateCache {
	return &RedisEstimateCache{Client: client, TTL: ttl}
}

func redisKey(k domain.PairKey) string { return redisKeyPrefix + k.String() }

// Fetch cached estimates for the given pairs with a single MGET.
func (r *RedisEstimateCache) GetMany(
	ctx context.Context,
	keys []domain.PairKey,
) (_ map[domain.PairKey]ports.CachedEstimate, err error) {
	defer obs.Time(ctx, "estimate.cache.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("estimate cache: redis client is nil")
	}

	out := make(map[domain.PairKey]ports.CachedEstimate, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = redisKey(k)
	}

	values, err := r.Client.MGet(ctx, names...).Result()
	if err != nil {
		return nil, fmt.Errorf("get estimate cache: redis mget: %w", err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e redisEstimate
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			log.WithField("key", names[i]).WithError(err).Warn("skipping malformed cached estimate")
			continue
		}
		out[keys[i]] = ports.CachedEstimate{
			DistanceMeters:  e.DistanceMeters,
			DurationSeconds: e.DurationSeconds,
		}
	}

	return out, nil
}

// Store many cached estimates in one pipeline.
func (r *RedisEstimateCache) PutMany(
	ctx context.Context,
	entries map[domain.PairKey]ports.CachedEstimate,
) error {
	if r.Client == nil {
		return errors.New("estimate cache: redis client is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for k, e := range entries {
		b, err := json.Marshal(redisEstimate{DistanceMeters: e.DistanceMeters, DurationSeconds: e.DurationSeconds})
		if err != nil {
			return fmt.Errorf("insert estimate cache pair=%q: marshal: %w", k, err)
		}
		pipe.Set(ctx, redisKey(k), b, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert estimate cache: redis pipeline: %w", err)
	}

	return nil
}
