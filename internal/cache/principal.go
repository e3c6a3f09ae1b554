// Package cache shares resolved principals between API instances through Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "principal:"

// PrincipalCache is a cache-aside layer in front of another principal
// resolver. Redis failures are logged and fall through to the inner resolver;
// resolution errors are never cached.
type PrincipalCache struct {
	rdb   redis.Cmdable
	inner gate.Resolver[uint, auth.Principal]
	ttl   time.Duration
	log   *zap.Logger
}

func NewPrincipalCache(rdb redis.Cmdable, inner gate.Resolver[uint, auth.Principal], ttl time.Duration, log *zap.Logger) *PrincipalCache {
	return &PrincipalCache{rdb: rdb, inner: inner, ttl: ttl, log: log}
}

func key(userID uint) string { return fmt.Sprintf("%s%d", keyPrefix, userID) }

// Resolve implements gate.Resolver.
func (c *PrincipalCache) Resolve(ctx context.Context, userID uint) (auth.Principal, error) {
	raw, err := c.rdb.Get(ctx, key(userID)).Result()
	switch {
	case err == nil:
		var p auth.Principal
		if jerr := json.Unmarshal([]byte(raw), &p); jerr == nil && p.Authenticated() {
			return p, nil
		}
		c.log.Warn("discarding corrupt principal cache entry", zap.Uint("user_id", userID))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("principal cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	}

	p, err := c.inner.Resolve(ctx, userID)
	if err != nil {
		return auth.Principal{}, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return p, nil
	}
	if err := c.rdb.Set(ctx, key(userID), string(body), c.ttl).Err(); err != nil {
		c.log.Warn("principal cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return p, nil
}

// Invalidate removes the cached principal of userID.
func (c *PrincipalCache) Invalidate(ctx context.Context, userID uint) error {
	return c.rdb.Del(ctx, key(userID)).Err()
}
