package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wcanexus/nexus/internal/adapters/http/api"
	"github.com/wcanexus/nexus/internal/adapters/source"
	"github.com/wcanexus/nexus/internal/app"
	"github.com/wcanexus/nexus/internal/cache"
	"github.com/wcanexus/nexus/internal/config"
	"github.com/wcanexus/nexus/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	fetcher := source.NewClient(cfg.SourceBaseURL,
		source.WithMaxAttempts(cfg.MaxRetries),
		source.WithBaseDelay(time.Duration(cfg.RetryBaseMS)*time.Millisecond),
		source.WithRateLimit(cfg.RateLimitRPS),
		source.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.RequestTimeoutMS) * time.Millisecond}),
	)
	store := cache.NewStore(cfg.CachePath,
		cache.WithTTL(time.Duration(cfg.CacheTTLHours)*time.Hour),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithFetcher(fetcher),
		app.WithCacheStore(store),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithCompetitorPages(cfg.CompetitorPages),
		app.WithMaxSearchResults(cfg.MaxSearchResults),
	)
	svc.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "server shutdown incomplete", logger.Error(err))
	}
}
