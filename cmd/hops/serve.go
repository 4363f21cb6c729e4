package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/hops/config"
	"github.com/hupe1980/hops/logging"
	"github.com/hupe1980/hops/observability"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Hops HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			slog.SetDefault(logger.Slog())

			engine, err := newEngine(cfg, flags.demo, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, engine, logger)
		},
	}
}

// newEngine builds the gin engine with Hops mounted in front of the
// application routes.
func newEngine(cfg *config.Config, withDemo bool, logger logging.Logger) (*gin.Engine, error) {
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	h, err := buildHops(cfg, withDemo, logger, metrics)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.Middleware())

	if metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	r.GET("/help", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Grasshopper Hops for Go!")
	})
	return r, nil
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger logging.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.start", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server.failed", "error", err.Error())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server.shutdown", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server.stopped")
	return nil
}
