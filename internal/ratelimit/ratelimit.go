package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/foodcourtlabs/foodcourt/internal/config"
)

// Limiter is a fixed-window per-client request limiter backed by redis.
type Limiter struct {
	client *redis.Client
	log    *zap.Logger
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, log *zap.Logger, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		log:    log.Named("ratelimit"),
		limit:  limit,
		window: window,
	}
}

// Provide returns nil when rate limiting is not configured; the server skips
// the middleware in that case.
func Provide(cfg config.Config, log *zap.Logger) (*Limiter, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ratelimit redis: %w", err)
	}
	return NewLimiter(client, log, cfg.RateLimit.RequestsPerMinute, time.Minute), nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))
	count, err := l.client.Incr(ctx, bucket).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, bucket, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis being down must not take the API with it.
			l.log.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}

var Module = fx.Module("ratelimit",
	fx.Provide(Provide),
)
