package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"store-monitor/internal/database"
	"store-monitor/internal/domain/report"
)

var ErrNotFound = errors.New("not found")

type ReportRepository interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Upsert(ctx context.Context, id uuid.UUID, completed bool, artifactPath string) error
	Get(ctx context.Context, id uuid.UUID) (report.Record, error)
}

type PostgresReportRepository struct {
	db database.Querier
}

func NewPostgresReportRepository(db database.Querier) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if r == nil || r.db == nil {
		return false, database.ErrNilDB
	}
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM store_report_status WHERE report_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PostgresReportRepository) Upsert(ctx context.Context, id uuid.UUID, completed bool, artifactPath string) error {
	if r == nil || r.db == nil {
		return database.ErrNilDB
	}
	if id == uuid.Nil {
		return nil
	}

	now := time.Now().UTC()
	var path any
	if artifactPath != "" {
		path = artifactPath
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO store_report_status (report_id, status, artifact_path, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$4)
		 ON CONFLICT (report_id) DO UPDATE SET
			status = EXCLUDED.status,
			artifact_path = COALESCE(EXCLUDED.artifact_path, store_report_status.artifact_path),
			updated_at = EXCLUDED.updated_at`,
		id,
		completed,
		path,
		now,
	)
	return err
}

func (r *PostgresReportRepository) Get(ctx context.Context, id uuid.UUID) (report.Record, error) {
	if r == nil || r.db == nil {
		return report.Record{}, database.ErrNilDB
	}

	var (
		rec  report.Record
		path *string
	)
	err := r.db.QueryRow(ctx,
		`SELECT report_id, status, artifact_path, created_at, updated_at
		 FROM store_report_status WHERE report_id = $1`,
		id,
	).Scan(&rec.ReportID, &rec.Completed, &path, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Record{}, ErrNotFound
		}
		return report.Record{}, err
	}
	if path != nil {
		rec.ArtifactPath = *path
	}
	return rec, nil
}
