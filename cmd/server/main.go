package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brainwise-app/brainwise-api/internal/api"
	"github.com/brainwise-app/brainwise-api/internal/assessments"
	"github.com/brainwise-app/brainwise-api/internal/config"
	"github.com/brainwise-app/brainwise-api/internal/inference"
	"github.com/brainwise-app/brainwise-api/internal/jobs"
)

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.EnableDB {
		pool, err = connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
	}

	var (
		jobStore jobs.Store
		history  assessments.Store
	)
	if pool != nil {
		jobStore = jobs.NewPostgresStore(pool)
		history = assessments.NewPostgresStore(pool)
	} else {
		logger.Warn("running without a database, analysis jobs will not survive restarts")
		jobStore = jobs.NewMemoryStore()
		history = assessments.NewMemoryStore()
	}

	if cfg.RedisAddr != "" {
		kv := jobs.NewRedisKV(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))
		jobStore = jobs.NewCachedStore(jobStore, kv, time.Hour, logger)
	}

	client := inference.NewClient(inference.Config{
		StrokeURL:     cfg.StrokeModelURL,
		AlzheimersURL: cfg.AlzheimersModelURL,
		TumorURL:      cfg.TumorModelURL,
		Timeout:       cfg.InferenceTimeout,
	}, logger)

	orchestrator := jobs.NewOrchestrator(jobStore, client, logger, jobs.WithTimeout(cfg.InferenceTimeout))
	orchestrator.Start(cfg.Workers)

	handler := api.NewHandler(client, orchestrator, history, logger)

	var db api.HealthChecker
	if pool != nil {
		db = pool
	}
	router := api.NewRouter(handler, db)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port))
	waitForShutdown(server, orchestrator, logger)
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.Set(level); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "brainwise-api")), nil
}

func waitForShutdown(server *http.Server, orchestrator *jobs.Orchestrator, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	// Let queued analysis jobs reach a terminal state before exit.
	orchestrator.Close()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
