package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/axellelanca/urlalias/internal/models"
	"github.com/redis/go-redis/v9"
)

const aliasKeyPrefix = "alias:"

// InitRedis connects to Redis and checks the connection with a PING.
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisAliasCache keeps active aliases in Redis for the redirect path.
// Errors are logged and reported as misses.
type RedisAliasCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisAliasCache creates a cache on rdb.
func NewRedisAliasCache(rdb *redis.Client, logger *slog.Logger) *RedisAliasCache {
	return &RedisAliasCache{rdb: rdb, logger: logger}
}

func (c *RedisAliasCache) Get(ctx context.Context, code string) (*models.Alias, bool) {
	val, err := c.rdb.Get(ctx, aliasKeyPrefix+code).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("alias cache read failed", "code", code, "error", err)
		}
		return nil, false
	}

	var alias models.Alias
	if err := json.Unmarshal(val, &alias); err != nil {
		c.logger.Warn("alias cache entry is corrupt", "code", code, "error", err)
		return nil, false
	}
	return &alias, true
}

func (c *RedisAliasCache) Set(ctx context.Context, alias *models.Alias, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(alias)
	if err != nil {
		c.logger.Warn("alias cache encode failed", "code", alias.Code, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, aliasKeyPrefix+alias.Code, data, ttl).Err(); err != nil {
		c.logger.Warn("alias cache write failed", "code", alias.Code, "error", err)
	}
}

func (c *RedisAliasCache) Delete(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, aliasKeyPrefix+code).Err(); err != nil {
		c.logger.Warn("alias cache invalidation failed", "code", code, "error", err)
	}
}
