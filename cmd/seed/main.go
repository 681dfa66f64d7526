package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"

	"store-monitor/internal/config"
	"store-monitor/internal/database/migration"
	dbpostgres "store-monitor/internal/database/postgres"
	"store-monitor/internal/database/seeder"
	"store-monitor/internal/logger"
	"store-monitor/migrations"
)

func main() {
	var paths seeder.Paths
	flag.StringVar(&paths.Polls, "polls", "", "CSV of store polls (store_id,status,timestamp_utc)")
	flag.StringVar(&paths.Timezones, "timezones", "", "CSV of store timezones (store_id,timezone_str)")
	flag.StringVar(&paths.BusinessHours, "business-hours", "", "CSV of business hours (store_id,dayOfWeek,start_time_local,end_time_local)")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := dbpostgres.Connect(connectCtx, cfg.Database, log)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := (migration.Runner{FS: migrations.FS, Logger: log}).Run(ctx, db.SQLDB()); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if *migrateOnly {
		return
	}

	seeders := seeder.FromPaths(paths, log)
	if len(seeders) == 0 {
		log.Error("nothing to import: pass -polls, -timezones or -business-hours")
		flag.Usage()
		os.Exit(2)
	}

	if err := (seeder.Runner{Seeders: seeders, Logger: log}).Run(ctx, db); err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Info("import finished")
}
