package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"askbrooks/metrics"
	"askbrooks/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

// Counter increments a key that expires after ttl and returns the new value.
type Counter interface {
	Increment(key string, ttl time.Duration) (int64, error)
}

// RedisCounter implements Counter with INCR + EXPIRE in one transaction.
type RedisCounter struct {
	Client *redis.Client
}

func (c RedisCounter) Increment(key string, ttl time.Duration) (int64, error) {
	pipe := c.Client.TxPipeline()
	incr := pipe.Incr(key)
	pipe.Expire(key, ttl)
	if _, err := pipe.Exec(); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimit allows at most limit requests per client IP per fixed window.
// Counter errors let the request through.
func RateLimit(counter Counter, limit int, window time.Duration, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return rateLimit(counter, limit, window, time.Now, logger, m)
}

func rateLimit(counter Counter, limit int, window time.Duration, now func() time.Time, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		t := now()
		bucket := t.Truncate(window)
		key := "ratelimit:ask:" + ctx.ClientIP() + ":" + strconv.FormatInt(bucket.Unix(), 10)

		count, err := counter.Increment(key, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			ctx.Next()
			return
		}
		if count > int64(limit) {
			m.IncRateLimited()
			retry := bucket.Add(window).Sub(t)
			ctx.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Detail: "Too many requests"})
			return
		}
		ctx.Next()
	}
}
