package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/coverscope/internal/adapters/http/api"
	"github.com/okian/coverscope/internal/adapters/http/swagger"
	"github.com/okian/coverscope/internal/adapters/predictapi"
	"github.com/okian/coverscope/internal/app"
	"github.com/okian/coverscope/internal/config"
	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/navigation"
	"github.com/okian/coverscope/pkg/logger"
	"github.com/okian/coverscope/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	writeTimeoutSlack     = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Go runtime metrics are reported through our own system gauges.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> dotenv -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Join(errors.New("failed to load config"), err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.Join(errors.New("failed to initialize logging"), err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, session, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Stop()

	go startSystemMetricsUpdater(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("api_url", cfg.APIURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// build wires the prediction client, the session and the HTTP routes.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.Server, *app.Session, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	client, err := predictapi.NewClient(cfg.APIURL,
		predictapi.WithTimeout(cfg.RequestTimeout()),
		predictapi.WithBreaker(cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout()),
		predictapi.WithLogger(log.Named("predictapi")),
	)
	if err != nil {
		return nil, nil, err
	}

	session := app.New(client,
		app.WithLogger(log.Named("session")),
		app.WithRestaurants(cfg.Restaurants),
		app.WithDefaultSelection(cfg.DefaultRestaurant, cfg.ServiceType()),
		app.WithNavigation(navigation.WithLocation(loc)),
		app.WithRangeEstimator(forecast.NewRangeEstimator(forecast.WithMargin(cfg.RangeMargin))),
	)
	if err := session.Start(ctx); err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(session, session).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.RequestTimeout() + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}, session, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
