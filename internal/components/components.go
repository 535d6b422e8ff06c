package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/api"
	"github.com/sameezy667/ResQ-sub000/internal/config"
	"github.com/sameezy667/ResQ-sub000/internal/mapper"
	"github.com/sameezy667/ResQ-sub000/internal/realtime"
	"github.com/sameezy667/ResQ-sub000/internal/redis"
	"github.com/sameezy667/ResQ-sub000/internal/service"
	"github.com/sameezy667/ResQ-sub000/internal/storage/postgres"
	"github.com/sameezy667/ResQ-sub000/internal/store"
	"github.com/sameezy667/ResQ-sub000/internal/workers"
	"github.com/sameezy667/ResQ-sub000/pkg/logger"
)

type Components struct {
	logger       *slog.Logger
	HttpServer   *api.Server
	Postgres     *postgres.Postgres
	Redis        *redis.Redis
	Store        *store.Store
	Loader       *service.Loader
	Merger       *realtime.Merger
	NotifySender *workers.NotifySender
}

// InitComponents wires the whole application. Postgres is required;
// redis is optional, without it the dashboard runs fetch-only with no
// realtime feed and no notification queue.
func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres", slog.Any("error", err))
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	var (
		redisClient *redis.Redis
		feed        *redis.ChangeFeed
		queue       *redis.NotifyQueue
	)
	redisClient, err = redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Redis unavailable, running fetch-only", slog.Any("error", err))
		redisClient = nil
	} else {
		feed = redis.NewChangeFeed(redisClient, logger)
		queue = redis.NewNotifyQueue(redisClient.Client, "notifications:queue")
	}

	st := store.New(logger)
	m := mapper.New(logger)

	// interface-typed nils would defeat the nil checks in the services
	var publisher service.Publisher
	if feed != nil {
		publisher = feed
	}
	var notify service.NotifyQueue
	if queue != nil {
		notify = queue
	}

	dispatchSvc := service.NewDispatchService(st, m, storage.Dispatches, storage.Units, publisher, notify, logger, cfg.Dispatch.NearbyRadiusKM)
	reportSvc := service.NewReportService(st, storage.Incidents, storage.Images, publisher, notify, logger, cfg.Dispatch.VerifyThreshold)
	loader := service.NewLoader(st, m, storage.Incidents, storage.Units, storage.Dispatches, logger)
	statsSvc := service.NewStatsService(storage.Stats, logger)

	srv := service.NewService(dispatchSvc, reportSvc, loader, statsSvc)

	var mergerFeed realtime.ChangeFeed
	if feed != nil {
		mergerFeed = feed
	}
	merger := realtime.NewMerger(st, m, mergerFeed, logger)

	sender := workers.NewNotifySender(logger, cfg.Notify, queue)

	httpServer := api.NewServer(cfg, logger, srv, st, storage.Images)
	logger.Info("Initialized server")

	return &Components{
		logger:       logger,
		HttpServer:   httpServer,
		Postgres:     storage,
		Redis:        redisClient,
		Store:        st,
		Loader:       loader,
		Merger:       merger,
		NotifySender: sender,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	c.Merger.Close()
	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components shut down",
		slog.Duration("latency", time.Since(start)))
}
