package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/logger"
	"store-monitor/internal/repository"
)

const maxIDAttempts = 3

type JobRunner interface {
	Run(ctx context.Context, id uuid.UUID) error
}

type ServiceConfig struct {
	JobTimeout       time.Duration
	AssumedDuration  time.Duration
	DownloadBasePath string
}

// StatusView is the status of a job as returned to API callers.
type StatusView struct {
	ReportID            uuid.UUID     `json:"report_id"`
	Status              report.Status `json:"status"`
	Progress            int           `json:"progress"`
	Message             string        `json:"message"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           *time.Time    `json:"updated_at,omitempty"`
	DownloadURL         string        `json:"download_url,omitempty"`
	EstimatedCompletion *time.Time    `json:"estimated_completion,omitempty"`
}

type ReportService struct {
	tracker   *StatusTracker
	reports   repository.ReportRepository
	runner    JobRunner
	artifacts ArtifactStore
	cfg       ServiceConfig
	logger    *logrus.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  atomic.Int64

	newID func() uuid.UUID
	now   func() time.Time
}

func NewReportService(
	tracker *StatusTracker,
	reports repository.ReportRepository,
	runner JobRunner,
	artifacts ArtifactStore,
	cfg ServiceConfig,
	l *logrus.Logger,
) *ReportService {
	if cfg.AssumedDuration <= 0 {
		cfg.AssumedDuration = 2 * time.Minute
	}
	if strings.TrimSpace(cfg.DownloadBasePath) == "" {
		cfg.DownloadBasePath = "/api/v1/reports"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReportService{
		tracker:   tracker,
		reports:   reports,
		runner:    runner,
		artifacts: artifacts,
		cfg:       cfg,
		logger:    logger.OrDefault(l),
		baseCtx:   ctx,
		cancel:    cancel,
		newID:     uuid.New,
		now:       time.Now,
	}
}

// Trigger allocates a report id, records the job as pending and starts the
// computation in the background. It returns as soon as the job is recorded.
func (s *ReportService) Trigger(ctx context.Context) (report.Job, error) {
	if err := s.baseCtx.Err(); err != nil {
		return report.Job{}, fmt.Errorf("service stopped: %w", err)
	}

	job, err := s.allocate(ctx)
	if err != nil {
		return report.Job{}, err
	}

	if err := s.reports.Upsert(ctx, job.ReportID, false, ""); err != nil {
		return report.Job{}, fmt.Errorf("persist report record: %w", err)
	}

	s.wg.Add(1)
	s.active.Add(1)
	go s.run(job.ReportID)

	s.logger.WithField("report_id", job.ReportID).Info("[Report] triggered")
	return job, nil
}

func (s *ReportService) allocate(ctx context.Context) (report.Job, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id := s.newID()

		exists, err := s.reports.Exists(ctx, id)
		if err != nil {
			return report.Job{}, fmt.Errorf("check report id: %w", err)
		}
		if exists {
			s.logger.WithFields(logrus.Fields{"report_id": id, "attempt": attempt}).Warn("[Report] id collision")
			continue
		}

		job, err := s.tracker.Create(ctx, id)
		switch {
		case err == nil:
			return job, nil
		case errors.Is(err, ErrJobExists):
			s.logger.WithFields(logrus.Fields{"report_id": id, "attempt": attempt}).Warn("[Report] id collision")
			continue
		case errors.Is(err, ErrTrackerUnavailable):
			// The durable record still tracks the job; status falls back to it.
			s.logger.WithError(err).WithField("report_id", id).Warn("[Report] status record not created")
			return job, nil
		default:
			return report.Job{}, err
		}
	}
	return report.Job{}, ErrIDCollision
}

func (s *ReportService) run(id uuid.UUID) {
	defer s.wg.Done()
	defer s.active.Add(-1)

	ctx := s.baseCtx
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return s.runner.Run(ctx, id)
	}()
	if err == nil {
		return
	}

	s.logger.WithError(err).WithField("report_id", id).Error("[Report] generation failed")

	// The job context may be the reason for the failure, so the final
	// write gets its own short deadline.
	failCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg := "Report generation failed: " + err.Error()
	if _, _, uerr := s.tracker.Update(failCtx, id, StatusUpdate{Status: report.StatusFailed, Message: &msg}); uerr != nil {
		s.logger.WithError(uerr).WithField("report_id", id).Warn("[Report] failure status not recorded")
	}
}

func (s *ReportService) Status(ctx context.Context, id uuid.UUID) (StatusView, error) {
	job, ok, err := s.tracker.Get(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("report_id", id).Warn("[Report] status lookup failed, using stored record")
	}
	if err != nil || !ok {
		return s.statusFromRecord(ctx, id)
	}

	view := StatusView{
		ReportID:  job.ReportID,
		Status:    job.Status,
		Progress:  job.Progress,
		Message:   job.Message,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	switch job.Status {
	case report.StatusCompleted:
		view.DownloadURL = s.downloadURL(id)
	case report.StatusProcessing:
		view.EstimatedCompletion = s.estimate(job)
	}
	return view, nil
}

func (s *ReportService) statusFromRecord(ctx context.Context, id uuid.UUID) (StatusView, error) {
	rec, err := s.reports.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return StatusView{}, ErrReportNotFound
		}
		return StatusView{}, err
	}

	updated := rec.UpdatedAt
	view := StatusView{ReportID: rec.ReportID, CreatedAt: rec.CreatedAt, UpdatedAt: &updated}
	switch {
	case rec.Completed:
		view.Status = report.StatusCompleted
		view.Progress = 100
		view.DownloadURL = s.downloadURL(id)
	case s.cfg.JobTimeout > 0 && s.now().Sub(rec.UpdatedAt) > s.cfg.JobTimeout:
		view.Status = report.StatusFailed
		view.Message = "Report generation did not complete"
	default:
		view.Status = report.StatusProcessing
	}
	return view, nil
}

func (s *ReportService) estimate(job report.Job) *time.Time {
	base := job.CreatedAt
	if job.UpdatedAt != nil {
		base = *job.UpdatedAt
	}
	remaining := 100 - job.Progress
	if remaining < 0 {
		remaining = 0
	}
	eta := base.Add(s.cfg.AssumedDuration * time.Duration(remaining) / 100)
	return &eta
}

func (s *ReportService) downloadURL(id uuid.UUID) string {
	return strings.TrimRight(s.cfg.DownloadBasePath, "/") + "/" + id.String() + "/download"
}

// Download returns the local path of a completed report.
func (s *ReportService) Download(ctx context.Context, id uuid.UUID) (string, error) {
	view, err := s.Status(ctx, id)
	if err != nil {
		return "", err
	}
	if view.Status != report.StatusCompleted {
		return "", ErrReportNotReady
	}

	path := ""
	if data, ok, err := s.tracker.GetData(ctx, id); err == nil && ok {
		path = data.ArtifactPath
	}
	if path == "" {
		if rec, err := s.reports.Get(ctx, id); err == nil {
			path = rec.ArtifactPath
		}
	}
	if path == "" {
		path = s.artifacts.Path(id)
	}

	if _, err := os.Stat(path); err != nil {
		s.logger.WithError(err).WithField("report_id", id).Warn("[Report] artifact missing")
		return "", ErrReportNotFound
	}
	return path, nil
}

func (s *ReportService) ActiveJobs() int {
	return int(s.active.Load())
}

// Wait blocks until every started job has returned.
func (s *ReportService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels running jobs and waits for them until ctx expires.
func (s *ReportService) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
