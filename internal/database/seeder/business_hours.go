package seeder

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/database"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/logger"
)

type BusinessHoursSeeder struct {
	Path      string
	BatchSize int
	Logger    *logrus.Logger
}

func (BusinessHoursSeeder) Name() string { return "store_menu_hour" }

func (s BusinessHoursSeeder) Run(ctx context.Context, db database.DB) error {
	f, err := openCSV(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Import(ctx, db, f)
}

func (s BusinessHoursSeeder) Import(ctx context.Context, db database.DB, r io.Reader) error {
	if err := EnsureTableColumns(ctx, db, "store_menu_hour", "store_id", "day_of_week", "start_time_local", "end_time_local"); err != nil {
		return err
	}
	log := logger.OrDefault(s.Logger).WithField("seeder", s.Name())

	b := newBatcher(db, s.BatchSize)
	defer b.Abort()

	seen := map[store.BusinessHourRule]struct{}{}
	duplicates := 0

	stats, err := readCSV(r, log, []string{"store_id", "dayOfWeek|day_of_week|day", "start_time_local", "end_time_local"}, func(_ int, rec record) error {
		rule, err := parseBusinessHour(rec)
		if err != nil {
			return skip(err)
		}
		if _, ok := seen[rule]; ok {
			duplicates++
			return nil
		}
		seen[rule] = struct{}{}
		return b.Exec(
			ctx,
			`INSERT INTO store_menu_hour (store_id, day_of_week, start_time_local, end_time_local) VALUES ($1, $2, $3, $4)
ON CONFLICT (store_id, day_of_week, start_time_local, end_time_local) DO NOTHING`,
			rule.StoreID,
			rule.DayOfWeek,
			rule.StartLocal.String(),
			rule.EndLocal.String(),
		)
	})
	if err != nil {
		return err
	}
	if err := b.Flush(ctx); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"read":       stats.Read,
		"inserted":   b.total,
		"skipped":    stats.Skipped,
		"duplicates": duplicates,
	}).Info("[Seeder] business hours imported")
	return nil
}

func parseBusinessHour(rec record) (store.BusinessHourRule, error) {
	id, err := uuid.Parse(rec.get("store_id"))
	if err != nil {
		return store.BusinessHourRule{}, fmt.Errorf("store_id: %w", err)
	}
	day, err := strconv.Atoi(rec.get("dayOfWeek", "day_of_week", "day"))
	if err != nil || !store.ValidDayOfWeek(day) {
		return store.BusinessHourRule{}, fmt.Errorf("day of week %q", rec.get("dayOfWeek", "day_of_week", "day"))
	}
	start, err := store.ParseTimeOfDay(rec.get("start_time_local"))
	if err != nil {
		return store.BusinessHourRule{}, err
	}
	end, err := store.ParseTimeOfDay(rec.get("end_time_local"))
	if err != nil {
		return store.BusinessHourRule{}, err
	}
	return store.BusinessHourRule{StoreID: id, DayOfWeek: day, StartLocal: start, EndLocal: end}, nil
}
