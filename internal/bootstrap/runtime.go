// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/cache"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/database"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/jobs"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs SQL migrations and/or AutoMigrate per DB_SCHEMA_MODE.
	ApplySchema bool
	// RequireRedis fails startup when Redis is unreachable instead of
	// running without realtime delivery.
	RequireRedis bool
}

// Runtime bundles the connections a command needs.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitLogging installs the configured logger for HTTP, services and repositories.
func InitLogging(cfg *config.Config, level string) {
	middleware.Logger = middleware.NewLogger(cfg.Env, level)
	observability.SetLogger(middleware.Logger)
}

// InitRuntime starts tracing and connects to the database and Redis.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  observability.ServiceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		if opts.RequireRedis {
			_ = database.Close(db)
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		middleware.Logger.Warn("redis unavailable, realtime delivery and token revocation disabled",
			slog.String("error", err.Error()))
		rdb = nil
	}

	return &Runtime{DB: db, Redis: rdb, shutdownTracing: shutdownTracing}, nil
}

// StartJobs schedules the background jobs and starts the cron runner.
func (r *Runtime) StartJobs(ctx context.Context, cfg *config.Config) (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler()
	requests := repository.NewTradeRequestRepository(r.DB)
	if err := scheduler.AddPendingGauge(ctx, cfg.MetricsRefreshSpec, requests); err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}

// Close flushes traces. The server owns the DB and Redis handles once built.
func (r *Runtime) Close(ctx context.Context) {
	if r.shutdownTracing == nil {
		return
	}
	if err := r.shutdownTracing(ctx); err != nil {
		middleware.Logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
	}
}
