package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAvatarCache guarda descripciones de avatares por URL de imagen para no
// repetir la llamada de visión en corridas sucesivas del mismo período.
type RedisAvatarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisAvatarCache(rdb *redis.Client, ttl time.Duration) *RedisAvatarCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisAvatarCache{rdb: rdb, ttl: ttl}
}

func key(imageURL string) string {
	sum := sha256.Sum256([]byte(imageURL))
	return "insight:avatar:" + hex.EncodeToString(sum[:])
}

func (c *RedisAvatarCache) Get(ctx context.Context, imageURL string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key(imageURL)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisAvatarCache) Put(ctx context.Context, imageURL, description string) {
	if c == nil || c.rdb == nil || description == "" {
		return
	}
	_ = c.rdb.Set(ctx, key(imageURL), description, c.ttl).Err()
}
