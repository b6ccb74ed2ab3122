package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manenim/window-limiter/internal/config"
	"github.com/manenim/window-limiter/internal/logger"
	"github.com/manenim/window-limiter/pkg/limiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	constraints, err := cfg.RateLimit.Constraints()
	if err != nil {
		log.Fatal("invalid rate limit config", zap.Error(err))
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	err = client.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		log.Fatal("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	rec, err := limiter.NewPrometheusRecorder(reg)
	if err != nil {
		log.Fatal("register metrics", zap.Error(err))
	}

	l, err := limiter.NewRedisLimiter(client,
		limiter.WithPrefix(cfg.RateLimit.Prefix),
		limiter.WithTimeout(cfg.RateLimit.Timeout),
		limiter.WithRecorder(rec),
		limiter.WithLogger(log),
	)
	if err != nil {
		log.Fatal("create limiter", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           newRouter(l, constraints, reg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server listening",
		zap.String("addr", cfg.App.Addr),
		zap.String("redis", cfg.Redis.Addr),
		zap.Strings("windows", cfg.RateLimit.Windows),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
