// Package app builds the site and runs the HTTP server around it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/api"
	"github.com/JakeFAU/binary-blog/internal/clock/system"
	"github.com/JakeFAU/binary-blog/internal/config"
	"github.com/JakeFAU/binary-blog/internal/metrics"
	"github.com/JakeFAU/binary-blog/internal/resolver"
	"github.com/JakeFAU/binary-blog/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	site           *Site
	apiServer      *api.Server
	tracerProvider *sdktrace.TracerProvider
}

// Build creates the application's dependencies and builds the site.
func Build(ctx context.Context, cfg config.Config, src Sources, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies",
		zap.Int("port", cfg.Server.Port),
		zap.String("build_version", cfg.Site.BuildVersion),
	)

	site, err := BuildSite(cfg, src, system.New(), logger.Named("build"))
	if err != nil {
		return nil, err
	}
	a.site = site

	res, err := resolver.New(site.Tree, resolver.Options{
		MaxAgeSeconds: cfg.Cache.MaxAgeSeconds,
		StyleNonce:    site.Page.StyleNonce,
	})
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
		stats := site.Tree.Stats()
		metrics.SetTreeSize(stats.Nodes, stats.Bytes, stats.CompressedBytes)
		metrics.SetBuildInfo(cfg.Site.BuildVersion)
	}

	opts := api.Options{
		MetricsEnabled: cfg.Metrics.Enabled,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.InitTracerProvider(ctx, telemetry.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Version:     cfg.Site.BuildVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("tracer init failed: %w", err)
		}
		a.tracerProvider = tp
		opts.TracerProvider = tp
	}
	a.apiServer = api.NewServer(res, opts, logger.Named("api"))
	return a, nil
}

// Site returns the built site.
func (a *App) Site() *Site {
	return a.site
}

// Handler returns the HTTP handler serving the site.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run serves on the configured port until ctx is canceled or the process
// receives SIGINT or SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
		close(serveErr)
	}()
	a.apiServer.SetReady(true)

	<-ctx.Done()
	a.apiServer.SetReady(false)
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	a.Close(shutdownCtx)
	if err, ok := <-serveErr; ok && err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Close flushes observability state.
func (a *App) Close(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if err := a.logger.Sync(); err != nil {
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
}
