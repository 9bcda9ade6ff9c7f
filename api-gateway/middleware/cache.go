package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/prognoza/forecast-platform/pkg/logger"
)

// CacheConfig holds response cache settings.
type CacheConfig struct {
	TTL            time.Duration
	CacheablePaths []string
}

// DefaultCacheConfig caches the forecast read endpoints only. Dashboard
// and history responses are expensive joins over prediction rows and
// stay valid until the next prediction run.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 5 * time.Minute,
		CacheablePaths: []string{
			"/api/forecast/data",
			"/api/forecast/history",
		},
	}
}

const forecastCachePrefix = "cache:forecast:"

// CacheMiddleware serves cached responses for forecast reads and
// stores fresh 200s on miss. The key includes the Authorization header
// so cached payloads never leak across organizations.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || c.Method() != fiber.MethodGet || !isPathCacheable(c.Path(), config.CacheablePaths) {
			return c.Next()
		}

		cacheKey := forecastCacheKey(c)

		ctx := context.Background()
		cached, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			logger.Logger.Debug().
				Str("path", c.Path()).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		logger.Logger.Debug().
			Str("path", c.Path()).
			Str("cache_key", cacheKey).
			Msg("Cache miss")

		err = c.Next()

		if c.Response().StatusCode() == fiber.StatusOK {
			body := c.Response().Body()
			if cacheErr := redisClient.Set(ctx, cacheKey, body, config.TTL).Err(); cacheErr != nil {
				logger.Logger.Warn().
					Err(cacheErr).
					Str("cache_key", cacheKey).
					Msg("Failed to cache response")
			} else {
				logger.Logger.Debug().
					Str("path", c.Path()).
					Str("cache_key", cacheKey).
					Dur("ttl", config.TTL).
					Int("size", len(body)).
					Msg("Response cached")
			}

			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// InvalidateForecastCache drops all cached forecast responses. Called
// after a successful prediction run so readers see fresh data before
// the TTL expires.
func InvalidateForecastCache(redisClient *redis.Client) error {
	ctx := context.Background()

	iter := redisClient.Scan(ctx, 0, forecastCachePrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := redisClient.Del(ctx, keys...).Err(); err != nil {
			return err
		}

		logger.Logger.Info().
			Int("count", len(keys)).
			Msg("Forecast cache invalidated")
	}

	return nil
}

func forecastCacheKey(c *fiber.Ctx) string {
	components := fmt.Sprintf("%s:%s:%s",
		c.Path(),
		string(c.Request().URI().QueryString()),
		c.Get("Authorization"),
	)

	hash := sha256.Sum256([]byte(components))
	return forecastCachePrefix + hex.EncodeToString(hash[:])
}

func isPathCacheable(path string, cacheablePaths []string) bool {
	for _, p := range cacheablePaths {
		if p == path {
			return true
		}
	}
	return false
}
