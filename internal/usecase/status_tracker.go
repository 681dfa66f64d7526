package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/logger"
)

const (
	DefaultStatusTTL = 24 * time.Hour
	DefaultDataTTL   = 7 * 24 * time.Hour
)

type KV interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	SetJSONIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

// Notifier receives every status record the tracker writes.
type Notifier interface {
	Notify(ctx context.Context, job report.Job)
}

func StatusKey(id uuid.UUID) string { return "report:status:" + id.String() }
func DataKey(id uuid.UUID) string   { return "report:data:" + id.String() }

type StatusUpdate struct {
	Status   report.Status
	Progress *int
	Message  *string
}

type StatusTracker struct {
	kv        KV
	statusTTL time.Duration
	dataTTL   time.Duration
	notifiers []Notifier
	logger    *logrus.Logger
	now       func() time.Time
}

func NewStatusTracker(kv KV, statusTTL, dataTTL time.Duration, l *logrus.Logger, notifiers ...Notifier) *StatusTracker {
	if statusTTL <= 0 {
		statusTTL = DefaultStatusTTL
	}
	if dataTTL <= 0 {
		dataTTL = DefaultDataTTL
	}
	n := make([]Notifier, 0, len(notifiers))
	for _, x := range notifiers {
		if x != nil {
			n = append(n, x)
		}
	}
	return &StatusTracker{
		kv:        kv,
		statusTTL: statusTTL,
		dataTTL:   dataTTL,
		notifiers: n,
		logger:    logger.OrDefault(l),
		now:       time.Now,
	}
}

// Create writes the initial pending record. It never replaces a live record.
func (t *StatusTracker) Create(ctx context.Context, id uuid.UUID) (report.Job, error) {
	job := report.Job{
		ReportID:  id,
		Status:    report.StatusPending,
		Progress:  0,
		CreatedAt: t.now().UTC(),
	}
	ok, err := t.kv.SetJSONIfAbsent(ctx, StatusKey(id), job, t.statusTTL)
	if err != nil {
		return job, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	if !ok {
		return report.Job{}, ErrJobExists
	}
	t.notify(ctx, job)
	return job, nil
}

// Update merges upd into the stored record and resets its TTL. A missing
// record is left alone and reported with ok=false.
func (t *StatusTracker) Update(ctx context.Context, id uuid.UUID, upd StatusUpdate) (report.Job, bool, error) {
	job, ok, err := t.Get(ctx, id)
	if err != nil || !ok {
		if err == nil {
			t.logger.WithField("report_id", id).Debug("[Tracker] update skipped, no status record")
		}
		return report.Job{}, false, err
	}

	if upd.Status != "" {
		job.Status = upd.Status
	}
	if upd.Progress != nil {
		job.Progress = *upd.Progress
	}
	if upd.Message != nil {
		job.Message = *upd.Message
	}
	now := t.now().UTC()
	job.UpdatedAt = &now

	if err := t.kv.SetJSON(ctx, StatusKey(id), job, t.statusTTL); err != nil {
		return job, false, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	t.notify(ctx, job)
	return job, true, nil
}

func (t *StatusTracker) Get(ctx context.Context, id uuid.UUID) (report.Job, bool, error) {
	var job report.Job
	ok, err := t.kv.GetJSON(ctx, StatusKey(id), &job)
	if err != nil {
		return report.Job{}, false, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	return job, ok, nil
}

func (t *StatusTracker) StoreData(ctx context.Context, data report.Data) error {
	if err := t.kv.SetJSON(ctx, DataKey(data.ReportID), data, t.dataTTL); err != nil {
		return fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	return nil
}

func (t *StatusTracker) GetData(ctx context.Context, id uuid.UUID) (report.Data, bool, error) {
	var data report.Data
	ok, err := t.kv.GetJSON(ctx, DataKey(id), &data)
	if err != nil {
		return report.Data{}, false, fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	return data, ok, nil
}

func (t *StatusTracker) notify(ctx context.Context, job report.Job) {
	for _, n := range t.notifiers {
		n.Notify(ctx, job)
	}
}
