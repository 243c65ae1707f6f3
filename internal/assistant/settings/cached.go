package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "bailey-assistant/internal/common/errors"
	"bailey-assistant/internal/common/logger"
)

// CacheKey is where CachedStore keeps the serialized settings.
const CacheKey = "assistant:settings"

// CachedStore reads settings through a Redis cache with a TTL. On a miss it
// loads from the Source and repopulates the cache; on any failure it returns
// the defaults it was built with.
type CachedStore struct {
	redis    redis.Cmdable
	source   Source
	defaults Settings
	ttl      time.Duration
	logger   logger.Logger
}

func NewCachedStore(rdb redis.Cmdable, source Source, defaults Settings, ttl time.Duration, log logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{
		redis:    rdb,
		source:   source,
		defaults: defaults.Normalize(),
		ttl:      ttl,
		logger:   log.WithFields(map[string]interface{}{"component": "settings"}),
	}
}

func (c *CachedStore) Get(ctx context.Context) Settings {
	raw, err := c.redis.Get(ctx, CacheKey).Bytes()
	if err == nil {
		var s Settings
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return s.Normalize()
		}
		c.logger.Warn("discarding unreadable cached settings", map[string]interface{}{"key": CacheKey})
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("settings cache unavailable", map[string]interface{}{"error": err.Error()})
	}

	s, err := c.load(ctx)
	if err != nil {
		stdErr := apperrors.NewSettingsLoadFailedError(err)
		c.logger.Error("using default settings", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return c.defaults
	}

	if payload, err := json.Marshal(s); err == nil {
		if err := c.redis.Set(ctx, CacheKey, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache settings", map[string]interface{}{"error": err.Error()})
		}
	}
	return s
}

func (c *CachedStore) load(ctx context.Context) (Settings, error) {
	if c.source == nil {
		return c.defaults, nil
	}
	s, err := c.source.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return c.defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}
	return s.Normalize(), nil
}

// Invalidate drops the cached value so the next Get reloads from the source.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, CacheKey).Err(); err != nil {
		return apperrors.NewSettingsLoadFailedError(err)
	}
	c.logger.Info("settings cache invalidated", nil)
	return nil
}
