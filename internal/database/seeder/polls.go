package seeder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/database"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/logger"
)

type PollsSeeder struct {
	Path      string
	BatchSize int
	Logger    *logrus.Logger
}

func (PollsSeeder) Name() string { return "store_status" }

func (s PollsSeeder) Run(ctx context.Context, db database.DB) error {
	f, err := openCSV(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Import(ctx, db, f)
}

func (s PollsSeeder) Import(ctx context.Context, db database.DB, r io.Reader) error {
	if err := EnsureTableColumns(ctx, db, "store_status", "store_id", "timestamp_utc", "status"); err != nil {
		return err
	}
	log := logger.OrDefault(s.Logger).WithField("seeder", s.Name())

	b := newBatcher(db, s.BatchSize)
	defer b.Abort()

	stats, err := readCSV(r, log, []string{"store_id", "status", "timestamp_utc"}, func(_ int, rec record) error {
		p, err := parsePoll(rec)
		if err != nil {
			return skip(err)
		}
		return b.Exec(
			ctx,
			`INSERT INTO store_status (store_id, timestamp_utc, status) VALUES ($1, $2, $3)`,
			p.StoreID,
			p.TimestampUTC,
			p.Active,
		)
	})
	if err != nil {
		return err
	}
	if err := b.Flush(ctx); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"read": stats.Read, "inserted": b.total, "skipped": stats.Skipped}).Info("[Seeder] polls imported")
	return nil
}

var pollTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parsePoll(rec record) (store.PollObservation, error) {
	id, err := uuid.Parse(rec.get("store_id"))
	if err != nil {
		return store.PollObservation{}, fmt.Errorf("store_id: %w", err)
	}

	var active bool
	switch strings.ToLower(rec.get("status")) {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		return store.PollObservation{}, fmt.Errorf("status %q", rec.get("status"))
	}

	ts, err := parsePollTimestamp(rec.get("timestamp_utc"))
	if err != nil {
		return store.PollObservation{}, err
	}

	return store.PollObservation{StoreID: id, TimestampUTC: ts, Active: active}, nil
}

func parsePollTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "UTC"))
	for _, layout := range pollTimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp_utc %q", s)
}
