package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"store-monitor/internal/config"
	"store-monitor/internal/database"
	"store-monitor/internal/database/migration"
	dbpostgres "store-monitor/internal/database/postgres"
	"store-monitor/internal/infrastructure/artifact"
	"store-monitor/internal/infrastructure/cache"
	"store-monitor/internal/infrastructure/events"
	"store-monitor/internal/pkg/jwt"
	"store-monitor/internal/repository"
	"store-monitor/internal/usecase"
	"store-monitor/internal/worker"
	"store-monitor/internal/ws"
	"store-monitor/migrations"
)

type Container struct {
	Config config.Config
	Logger *logrus.Logger

	DB    database.DB
	Redis *cache.Redis
	Kafka *events.KafkaPublisher
	Hub   *ws.Hub

	Tracker *usecase.StatusTracker
	Reports *usecase.ReportService
	Health  *usecase.Health
	Tokens  jwt.Service
}

func NewContainer(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Container, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: log, DB: db}

	if err := (migration.Runner{FS: migrations.FS, Logger: log}).Run(ctx, db.SQLDB()); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	defaultLoc, err := time.LoadLocation(cfg.Report.DefaultTimezone)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Redis = cache.NewRedis(cfg.Redis, log)
	c.Hub = ws.NewHub(log)

	notifiers := []usecase.Notifier{c.Hub}
	if cfg.KafkaEnabled() {
		c.Kafka = events.NewKafkaPublisher(cfg.Kafka, log)
		notifiers = append(notifiers, c.Kafka)
	}

	c.Tracker = usecase.NewStatusTracker(c.Redis, cfg.Report.StatusTTL, cfg.Report.DataTTL, log, notifiers...)

	stores := repository.NewPostgresStoreRepository(db, log)
	reports := repository.NewPostgresReportRepository(db)
	artifacts := artifact.NewCSVStore(cfg.Report.Dir)
	aggregator := usecase.NewAggregator(worker.NewPool(cfg.Report.Workers), log)
	generator := usecase.NewGenerator(stores, reports, c.Tracker, aggregator, artifacts, defaultLoc, log)

	c.Reports = usecase.NewReportService(c.Tracker, reports, generator, artifacts, usecase.ServiceConfig{
		JobTimeout:       cfg.Report.JobTimeout,
		AssumedDuration:  cfg.Report.AssumedDuration,
		DownloadBasePath: cfg.Report.DownloadBasePath,
	}, log)
	c.Health = usecase.NewHealthUsecase(db, c.Redis, c.Reports)

	if cfg.Auth.APITokenSecret != "" {
		c.Tokens = jwt.NewHMACService(cfg.Auth.APITokenSecret, cfg.Auth.APITokenTTL, cfg.App.AppName)
	}

	return c, nil
}

// Shutdown stops report jobs, waiting for them until ctx expires.
func (c *Container) Shutdown(ctx context.Context) error {
	if c == nil || c.Reports == nil {
		return nil
	}
	return c.Reports.Shutdown(ctx)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			c.Logger.WithError(err).Warn("[App] kafka close")
		}
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
