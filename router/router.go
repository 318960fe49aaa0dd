package router

import (
	"strings"
	"time"

	"askbrooks/config"
	"askbrooks/controllers"
	"askbrooks/metrics"
	"askbrooks/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Minute

// SetupRouter builds the gin engine with CORS, logging, recovery and routes.
// rdb may be nil, in which case /ask is not rate limited.
func SetupRouter(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, rdb *redis.Client, ask *controllers.AskController) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.Recovery(logger), middlewares.RequestLogger(logger, m))
	r.Use(cors.New(corsConfig(cfg.App.CORSOrigins)))

	r.GET("/health", controllers.HealthCheck)

	askHandlers := []gin.HandlerFunc{}
	if rdb != nil && cfg.RateLimit.PerMinute > 0 {
		askHandlers = append(askHandlers, middlewares.RateLimit(
			middlewares.RedisCounter{Client: rdb}, cfg.RateLimit.PerMinute, rateLimitWindow, logger, m))
	}
	askHandlers = append(askHandlers, ask.Ask)
	r.POST("/ask", askHandlers...)

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			// Browsers refuse credentials on a wildcard origin.
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return c
		}
	}
	if len(origins) == 0 {
		origins = []string{config.DefaultCORSOrigin}
	}
	c.AllowOrigins = origins
	return c
}
