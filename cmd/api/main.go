package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/localkart/homeservices-api/internal/app"
	"github.com/localkart/homeservices-api/internal/config"
	"github.com/localkart/homeservices-api/internal/middleware"
	"github.com/localkart/homeservices-api/internal/observability"
	"github.com/localkart/homeservices-api/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger("error").Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, router.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	prom := observability.NewProm(reg)

	stores, err := app.OpenStores(ctx, cfg, prom, log)
	if err != nil {
		log.Error("store init failed", "err", err)
		os.Exit(1)
	}

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, falling back to in-memory rate limiting", "addr", cfg.RedisAddr, "err", err)
		} else {
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
			log.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
		}
		cancel()
		defer rdb.Close()
	}

	a, err := app.New(app.Options{
		Config:  cfg,
		Stores:  stores,
		Log:     log,
		Prom:    prom,
		Metrics: reg,
		Limiter: limiter,
	})
	if err != nil {
		log.Error("app init failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.Error("store close failed", "err", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}
	log.Info("shutdown complete")
}
