package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/database"
	"store-monitor/internal/domain/store"
	"store-monitor/internal/logger"
)

type StoreRepository interface {
	ListPollsBetween(ctx context.Context, startUTC, endUTC time.Time) ([]store.PollObservation, error)
	ListBusinessHours(ctx context.Context) ([]store.BusinessHourRule, error)
	ListTimezones(ctx context.Context) (map[uuid.UUID]string, error)
}

type PostgresStoreRepository struct {
	db     database.Querier
	logger *logrus.Logger
}

func NewPostgresStoreRepository(db database.Querier, l *logrus.Logger) *PostgresStoreRepository {
	return &PostgresStoreRepository{db: db, logger: logger.OrDefault(l)}
}

func (r *PostgresStoreRepository) ListPollsBetween(ctx context.Context, startUTC, endUTC time.Time) ([]store.PollObservation, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT store_id, timestamp_utc, status
		 FROM store_status
		 WHERE timestamp_utc >= $1 AND timestamp_utc <= $2
		 ORDER BY store_id, timestamp_utc`,
		startUTC.UTC(),
		endUTC.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.PollObservation, 0, 1024)
	for rows.Next() {
		var p store.PollObservation
		if err := rows.Scan(&p.StoreID, &p.TimestampUTC, &p.Active); err != nil {
			return nil, err
		}
		p.TimestampUTC = p.TimestampUTC.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresStoreRepository) ListBusinessHours(ctx context.Context) ([]store.BusinessHourRule, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT store_id, day_of_week, start_time_local::text, end_time_local::text
		 FROM store_menu_hour
		 ORDER BY store_id, day_of_week, start_time_local`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.BusinessHourRule, 0, 256)
	for rows.Next() {
		var (
			id         uuid.UUID
			day        int16
			start, end string
		)
		if err := rows.Scan(&id, &day, &start, &end); err != nil {
			return nil, err
		}
		startTOD, err := store.ParseTimeOfDay(start)
		if err != nil {
			r.logger.WithError(err).WithField("store_id", id).Warn("[StoreRepository] skipping business hour row")
			continue
		}
		endTOD, err := store.ParseTimeOfDay(end)
		if err != nil {
			r.logger.WithError(err).WithField("store_id", id).Warn("[StoreRepository] skipping business hour row")
			continue
		}
		out = append(out, store.BusinessHourRule{
			StoreID:    id,
			DayOfWeek:  int(day),
			StartLocal: startTOD,
			EndLocal:   endTOD,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresStoreRepository) ListTimezones(ctx context.Context) (map[uuid.UUID]string, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}

	rows, err := r.db.Query(ctx, `SELECT store_id, timezone_str FROM timezone_store`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID]string{}
	for rows.Next() {
		var (
			id uuid.UUID
			tz string
		)
		if err := rows.Scan(&id, &tz); err != nil {
			return nil, err
		}
		out[id] = tz
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
