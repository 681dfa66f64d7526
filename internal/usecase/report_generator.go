package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/domain/uptime"
	"store-monitor/internal/logger"
	"store-monitor/internal/repository"
)

type ArtifactStore interface {
	Save(ctx context.Context, id uuid.UUID, rows []report.Row) (string, error)
	Path(id uuid.UUID) string
}

// Generator runs one report job end to end: reference data, the three
// windows, the artifact and the durable record.
type Generator struct {
	stores     repository.StoreRepository
	reports    repository.ReportRepository
	tracker    *StatusTracker
	aggregator *Aggregator
	artifacts  ArtifactStore
	defaultLoc *time.Location
	logger     *logrus.Logger
	now        func() time.Time
}

func NewGenerator(
	stores repository.StoreRepository,
	reports repository.ReportRepository,
	tracker *StatusTracker,
	aggregator *Aggregator,
	artifacts ArtifactStore,
	defaultLoc *time.Location,
	l *logrus.Logger,
) *Generator {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Generator{
		stores:     stores,
		reports:    reports,
		tracker:    tracker,
		aggregator: aggregator,
		artifacts:  artifacts,
		defaultLoc: defaultLoc,
		logger:     logger.OrDefault(l),
		now:        time.Now,
	}
}

// stepsPerWindow is fetch + aggregate.
const stepsPerWindow = 2

func progressAt(step, total int) int {
	if total <= 0 {
		return 0
	}
	p := step * 100 / total
	if p > 99 {
		p = 99
	}
	return p
}

func (g *Generator) Run(ctx context.Context, id uuid.UUID) error {
	log := g.logger.WithField("report_id", id)
	started := time.Now()
	totalSteps := len(uptime.Windows) * stepsPerWindow

	g.progress(ctx, id, 0, "Loading business hours and timezones")

	rules, err := g.stores.ListBusinessHours(ctx)
	if err != nil {
		return fmt.Errorf("load business hours: %w", err)
	}
	zones, err := g.stores.ListTimezones(ctx)
	if err != nil {
		return fmt.Errorf("load timezones: %w", err)
	}
	byStore := uptime.GroupRules(rules)
	tz := newTimezoneResolver(zones, g.defaultLoc, g.logger)

	now := g.now().UTC()
	var (
		rows   []report.Row
		failed int
		stores = map[uuid.UUID]struct{}{}
		step   int
	)
	for _, kind := range uptime.Windows {
		if err := ctx.Err(); err != nil {
			return err
		}
		bounds, err := uptime.Bounds(kind, now)
		if err != nil {
			return err
		}

		polls, err := g.stores.ListPollsBetween(ctx, bounds.Start, bounds.End)
		if err != nil {
			return fmt.Errorf("load polls for %s: %w", kind, err)
		}
		step++
		g.progress(ctx, id, progressAt(step, totalSteps), fmt.Sprintf("Fetched %d polls for %s", len(polls), kind))

		res, err := g.aggregator.Aggregate(ctx, WindowInput{
			Kind:     kind,
			Bounds:   bounds,
			Polls:    polls,
			Rules:    byStore,
			Timezone: tz,
		})
		if err != nil {
			return fmt.Errorf("aggregate %s: %w", kind, err)
		}
		for _, r := range res.Rows {
			stores[r.StoreID] = struct{}{}
		}
		rows = append(rows, res.Rows...)
		failed += res.Failed
		step++
		g.progress(ctx, id, progressAt(step, totalSteps), fmt.Sprintf("Computed %s for %d stores", kind, len(res.Rows)))

		log.WithFields(logrus.Fields{
			"window": kind,
			"stores": len(res.Rows),
			"failed": res.Failed,
			"polls":  len(polls),
		}).Info("[Report] window done")
	}

	path, err := g.artifacts.Save(ctx, id, rows)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	data := report.Data{
		ReportID:     id,
		ArtifactPath: path,
		RowCount:     len(rows),
		StoreCount:   len(stores),
		FailedStores: failed,
		GeneratedAt:  g.now().UTC(),
	}
	if err := g.reports.Upsert(ctx, id, true, path); err != nil {
		return fmt.Errorf("persist report record: %w", err)
	}
	// The durable record already points at the artifact, so the KV copy is
	// best-effort like every other tracker write.
	if err := g.tracker.StoreData(ctx, data); err != nil {
		log.WithError(err).Warn("[Report] report data not recorded")
	}

	msg := fmt.Sprintf("Report generated for %d stores", len(stores))
	if failed > 0 {
		msg = fmt.Sprintf("%s (%d store computations failed)", msg, failed)
	}
	done := 100
	if _, _, err := g.tracker.Update(ctx, id, StatusUpdate{Status: report.StatusCompleted, Progress: &done, Message: &msg}); err != nil {
		log.WithError(err).Warn("[Report] completion status not recorded")
	}

	log.WithFields(logrus.Fields{
		"rows":     len(rows),
		"stores":   len(stores),
		"failed":   failed,
		"duration": time.Since(started).String(),
	}).Info("[Report] completed")
	return nil
}

// progress is best-effort: a tracker failure is logged and the job goes on.
func (g *Generator) progress(ctx context.Context, id uuid.UUID, pct int, msg string) {
	_, _, err := g.tracker.Update(ctx, id, StatusUpdate{Status: report.StatusProcessing, Progress: &pct, Message: &msg})
	if err != nil {
		g.logger.WithError(err).WithField("report_id", id).Warn("[Report] progress not recorded")
	}
}
