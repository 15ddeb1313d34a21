package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"loan-amortizer/config"
	httpLayer "loan-amortizer/http"
	"loan-amortizer/metrics"
	"loan-amortizer/repository"
	"loan-amortizer/service"
)

func serve(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Log)

	slog.Info("config loaded",
		"path", configPath,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"port_fallback", cfg.Server.Fallback(),
		"cache_backend", cfg.Cache.Backend,
	)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := metrics.New()

	cache, closeCache := newCache(ctx, cfg.Cache)
	defer closeCache()

	loanService := service.NewLoanService(cache,
		service.WithMetrics(reg),
		service.WithCacheTTL(cfg.Cache.TTL),
		service.WithLimits(limitsFrom(cfg.Limits)),
	)
	comparisonService := service.NewTermComparisonService(loanService)

	var rateLimiter *httpLayer.RateLimiter
	if cfg.RateLimit.IsEnabled() {
		rateLimiter = httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
		defer rateLimiter.Stop()
	}

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(next *config.Config) {
				loanService.SetLimits(limitsFrom(next.Limits))
				if rateLimiter != nil {
					rateLimiter.SetLimits(next.RateLimit.Capacity, next.RateLimit.Refill)
				}
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	router := httpLayer.NewRouter(httpLayer.Handlers{
		Loan:        httpLayer.NewLoanHandler(loanService),
		Comparison:  httpLayer.NewTermComparisonHandler(comparisonService),
		Metrics:     reg,
		RateLimiter: rateLimiter,
	})

	lis, err := httpLayer.Listen(httpLayer.ListenConfig{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Fallback: cfg.Server.Fallback(),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("Server Running at %s\n", lis.Addr())
		slog.Info("HTTP server listening", "addr", lis.Addr().String())
		if err := server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server exited")
	return nil
}

// newCache builds the configured cache backend. A Redis server that does
// not answer a ping is replaced by the in-memory cache.
func newCache(ctx context.Context, cfg config.CacheConfig) (repository.CacheRepository, func()) {
	switch cfg.Backend {
	case "none":
		return repository.NoopCache{}, func() {}
	case "redis":
		addr := cfg.RedisAddr()
		rc := repository.NewRedisCache(addr)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			slog.Error("redis unreachable, falling back to memory cache", "addr", addr, "err", err)
			_ = rc.Close()
			break
		}

		slog.Info("connected to redis", "addr", addr)
		return rc, func() {
			if err := rc.Close(); err != nil {
				slog.Warn("closing redis client", "err", err)
			}
		}
	}

	mc := repository.NewMemoryCache()
	go sweepLoop(ctx, mc, time.Minute)
	return mc, func() {}
}

func sweepLoop(ctx context.Context, mc *repository.MemoryCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mc.Sweep(); n > 0 {
				slog.Debug("memory cache swept", "removed", n)
			}
		}
	}
}

func limitsFrom(l config.LimitsConfig) service.Limits {
	return service.Limits{
		MaxLoanAmount:   float32(l.MaxLoanAmount),
		MaxInterestRate: float32(l.MaxInterestRate),
		MaxTermMonths:   l.MaxTermMonths,
	}
}
