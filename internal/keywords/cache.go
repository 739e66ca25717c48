package keywords

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedExpander is a read-through Redis cache in front of another Expander.
// Cache failures are logged and ignored; the inner expander is the source of
// truth.
type CachedExpander struct {
	inner  Expander
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedExpander(inner Expander, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedExpander {
	return &CachedExpander{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "keyword_cache"),
	}
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "search:kw:" + hex.EncodeToString(sum[:])
}

func (c *CachedExpander) Expand(ctx context.Context, query string) ([]string, error) {
	key := cacheKey(query)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var keywords []string
		if err := json.Unmarshal([]byte(cached), &keywords); err == nil && len(keywords) > 0 {
			return keywords, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("keyword cache get", "error", err)
	}

	keywords, err := c.inner.Expand(ctx, query)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(keywords); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("keyword cache set", "error", err)
		}
	}

	return keywords, nil
}
