package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/af-corp/content-assistant/internal/api"
	"github.com/af-corp/content-assistant/internal/cache"
	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/generate"
	"github.com/af-corp/content-assistant/internal/ratelimit"
	"github.com/af-corp/content-assistant/internal/telemetry"
	"github.com/af-corp/content-assistant/internal/upstream"
)

const memorySweepInterval = time.Minute

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	loader := a.loader

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}
	cfg := loader.Config()

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Connect to Redis
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not reachable (cache falls back, rate limiting fails open)", "error", err)
			rdb.Close()
			rdb = nil
		} else {
			logger.Info("redis connected", "addr", cfg.Redis.Address)
			defer rdb.Close()
		}
	}

	store, backend := cache.FromConfig(cfg.Cache, rdb)
	if mem, ok := store.(*cache.Memory); ok {
		go mem.RunSweeper(ctx, memorySweepInterval)
	}
	logger.Info("cache ready", "backend", backend, "ttl", cfg.Cache.TTL.String())

	metrics := telemetry.NewMetrics()

	// Upstream provider with circuit breaker
	var tracker *upstream.HealthTracker
	if cb := cfg.Upstream.CircuitBreaker; cb.Enabled {
		tracker = upstream.NewHealthTracker(cb.FailureThreshold, cb.RecoveryProbeInterval)
	}
	provider, err := upstream.BuildFromConfig(cfg.Upstream, tracker)
	if err != nil {
		return err
	}
	if cfg.Upstream.APIKey == "" {
		logger.Warn("no upstream api key configured; generation requests will fail until one is set",
			"provider", provider.Name())
	}
	gen := generate.New(store, cfg.Cache.TTL, provider, cfg.Upstream, metrics, logger)

	loader.OnReload(func() {
		next := loader.Config()
		p, err := upstream.BuildFromConfig(next.Upstream, tracker)
		if err != nil {
			logger.Error("keeping previous upstream provider", "error", err)
			return
		}
		gen.SetUpstream(p, next.Upstream)
		logger.Info("upstream provider reloaded", "provider", p.Name(), "model", next.Upstream.Model)
	})

	// Content filters
	chain, policyEval, err := newFilterChain(loader)
	if err != nil {
		return err
	}
	loader.OnReload(func() {
		if !loader.Config().Filter.Policy.Enabled {
			return
		}
		if err := policyEval.Load(); err != nil {
			logger.Error("keeping previous content policy", "error", err)
		}
	})

	handler := api.NewHandler(gen, chain, metrics, logger, func() int64 {
		return loader.Config().Server.MaxBodyBytes
	})
	limiter := ratelimit.NewLimiter(rdb, cfg.Cache.KeyPrefix)

	r := api.NewRouter(api.Routes{
		API: handler,
		Health: &api.Health{
			Version:  version,
			Cache:    backend,
			Provider: func() string { return loader.Config().Upstream.Provider },
			Tracker:  tracker,
		},
		Metrics: promhttp.Handler(),
		RateLimit: ratelimit.Middleware(limiter, func() config.RateLimitConfig {
			return loader.Config().RateLimit
		}, metrics),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("assistant starting", "addr", addr, "version", version, "provider", provider.Name())
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("assistant stopped")
	return nil
}
