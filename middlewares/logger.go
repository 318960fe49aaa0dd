package middlewares

import (
	"net/http"
	"time"

	"askbrooks/metrics"
	"askbrooks/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request and records it in m.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		latency := time.Since(start)
		status := ctx.Writer.Status()
		m.ObserveHTTP(ctx.Request.Method, ctx.FullPath(), status, latency)

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", ctx.ClientIP()),
			zap.Duration("latency", latency),
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 with a generic detail.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", ctx.Request.URL.Path), zap.Stack("stack"))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Internal Server Error"})
	})
}
