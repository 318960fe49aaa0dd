package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"askbrooks/config"
	"askbrooks/controllers"
	"askbrooks/metrics"
	"askbrooks/router"
	"askbrooks/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			config.Load,
			config.NewLogger,
			config.NewRedis,
			config.NewRabbit,
			newMetrics,
			services.NotebookLMConnector,
			services.NewClientManager,
			services.NewEventPublisher,
			services.NewAskService,
			controllers.NewAskController,
			newEngine,
			newServer,
		),
		fx.Invoke(registerLifecycle),
	).Run()
}

func newMetrics(cfg *config.Config) *metrics.Metrics {
	return metrics.New(cfg.App.Name)
}

func newEngine(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, rdb *redis.Client, ask *controllers.AskController) *gin.Engine {
	gin.SetMode(cfg.App.GinMode)
	return router.SetupRouter(cfg, logger, m, rdb, ask)
}

func newServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// registerLifecycle starts the HTTP server and, on shutdown, drains it before
// releasing the NotebookLM client and the broker connections.
func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *http.Server, manager *services.ClientManager,
	rdb *redis.Client, rabbit *config.Rabbit, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("ask brooks api listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var errs []error
			if err := srv.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			if err := manager.Release(ctx); err != nil {
				errs = append(errs, err)
			}
			if rdb != nil {
				if err := rdb.Close(); err != nil {
					errs = append(errs, err)
				}
			}
			if err := rabbit.Close(); err != nil {
				errs = append(errs, err)
			}
			_ = logger.Sync()
			return errors.Join(errs...)
		},
	})
}
