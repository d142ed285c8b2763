package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheTTL = 24 * time.Hour

// CachedGeocoder fronts another Geocoder with a redis cache. Cache failures
// fall through to the inner geocoder; a flaky cache must never break lookups.
type CachedGeocoder struct {
	inner Geocoder
	rdb   *redis.Client
}

func WithCache(inner Geocoder, rdb *redis.Client) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, rdb: rdb}
}

func cacheKey(address string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(address))
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	key := cacheKey(address)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached Result
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		logrus.WithField("key", key).Warn("Dropping unreadable geocode cache entry")
	} else if err != redis.Nil {
		logrus.WithError(err).Warn("Geocode cache read failed")
	}

	result, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			logrus.WithError(err).Warn("Geocode cache write failed")
		}
	}
	return result, nil
}
