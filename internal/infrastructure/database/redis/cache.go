package redis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

const cacheName = "fingerprint"

// FingerprintCache is a read-through cache of serialized fingerprint records.
// Keys are derived from the molecular graph digest plus the computation
// parameters.  The digest is declaration-order-sensitive (see Graph.Digest),
// so a resubmission shares an entry only when atoms and bonds arrive in the
// same order; a permuted submission recomputes and stores its own entry.
// Concurrent misses for one key collapse into a single computation via
// singleflight.
//
// Cache failures degrade to computing: a broken Redis never makes a request
// fail, it only makes it slower.
type FingerprintCache struct {
	client  *Client
	prefix  string
	ttl     time.Duration
	group   singleflight.Group
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewFingerprintCache builds a cache over client using cfg's TTL and prefix.
func NewFingerprintCache(client *Client, cfg config.RedisConfig, log logging.Logger, metrics *prometheus.AppMetrics) *FingerprintCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FingerprintCache{
		client:  client,
		prefix:  cfg.KeyPrefix,
		ttl:     cfg.DefaultTTL,
		logger:  log.Named("fpcache"),
		metrics: metrics,
	}
}

// Key derives the cache key for one computation.  Radius and length are part
// of the key because the same molecule folds differently per parameter set.
func (c *FingerprintCache) Key(digest string, scheme chem.FingerprintScheme, radius, length int) string {
	return fmt.Sprintf("%s:fp:%s:r%d:l%d:%s", c.prefix, scheme, radius, length, digest)
}

// GetOrCompute returns the cached record for key, or runs compute once and
// stores the result.  The bool reports whether the value came from the cache.
func (c *FingerprintCache) GetOrCompute(ctx context.Context, key string, compute func() (*fingerprint.Record, error)) (*fingerprint.Record, bool, error) {
	if rec, ok := c.lookup(ctx, key); ok {
		prometheus.RecordCacheAccess(c.metrics, cacheName, true)
		return rec, true, nil
	}
	prometheus.RecordCacheAccess(c.metrics, cacheName, false)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A racing caller may have filled the entry while we queued.
		if rec, ok := c.lookup(ctx, key); ok {
			return rec, nil
		}
		rec, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, rec)
		return rec, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*fingerprint.Record), false, nil
}

// Invalidate removes entries.  Used by tests and administrative tooling.
func (c *FingerprintCache) Invalidate(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...)
}

func (c *FingerprintCache) lookup(ctx context.Context, key string) (*fingerprint.Record, bool) {
	if c.client == nil {
		return nil, false
	}
	data, ok, err := c.client.GetBytes(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", logging.String("key", key), logging.Err(err))
		if c.metrics != nil {
			c.metrics.CacheErrorsTotal.WithLabelValues(cacheName).Inc()
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}
	rec, err := fingerprint.UnmarshalRecord(data)
	if err != nil {
		// A corrupt entry is dropped so the next request recomputes it.
		c.logger.Warn("cache entry corrupt, evicting", logging.String("key", key), logging.Err(err))
		_ = c.client.Del(ctx, key)
		return nil, false
	}
	return rec, true
}

func (c *FingerprintCache) store(ctx context.Context, key string, rec *fingerprint.Record) {
	if c.client == nil {
		return
	}
	data, err := rec.MarshalBinary()
	if err != nil {
		c.logger.Warn("cache serialize failed", logging.String("key", key), logging.Err(err))
		return
	}
	if err := c.client.SetBytes(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
		if c.metrics != nil {
			c.metrics.CacheErrorsTotal.WithLabelValues(cacheName).Inc()
		}
	}
}
