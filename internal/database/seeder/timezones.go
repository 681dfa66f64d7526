package seeder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/database"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/logger"
)

type TimezonesSeeder struct {
	Path      string
	BatchSize int
	Logger    *logrus.Logger
}

func (TimezonesSeeder) Name() string { return "timezone_store" }

func (s TimezonesSeeder) Run(ctx context.Context, db database.DB) error {
	f, err := openCSV(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Import(ctx, db, f)
}

func (s TimezonesSeeder) Import(ctx context.Context, db database.DB, r io.Reader) error {
	if err := EnsureTableColumns(ctx, db, "timezone_store", "store_id", "timezone_str"); err != nil {
		return err
	}
	log := logger.OrDefault(s.Logger).WithField("seeder", s.Name())

	b := newBatcher(db, s.BatchSize)
	defer b.Abort()

	stats, err := readCSV(r, log, []string{"store_id", "timezone_str"}, func(_ int, rec record) error {
		tz, err := parseTimezone(rec)
		if err != nil {
			return skip(err)
		}
		return b.Exec(
			ctx,
			`INSERT INTO timezone_store (store_id, timezone_str) VALUES ($1, $2)
ON CONFLICT (store_id) DO UPDATE SET timezone_str = EXCLUDED.timezone_str`,
			tz.StoreID,
			tz.Timezone,
		)
	})
	if err != nil {
		return err
	}
	if err := b.Flush(ctx); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"read": stats.Read, "inserted": b.total, "skipped": stats.Skipped}).Info("[Seeder] timezones imported")
	return nil
}

func parseTimezone(rec record) (store.StoreTimezone, error) {
	id, err := uuid.Parse(rec.get("store_id"))
	if err != nil {
		return store.StoreTimezone{}, fmt.Errorf("store_id: %w", err)
	}
	name := rec.get("timezone_str")
	if name == "" {
		name = store.DefaultTimezone
	}
	if _, err := time.LoadLocation(name); err != nil {
		return store.StoreTimezone{}, fmt.Errorf("timezone_str: %w", err)
	}
	return store.StoreTimezone{StoreID: id, Timezone: name}, nil
}
