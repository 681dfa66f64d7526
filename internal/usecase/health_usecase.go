package usecase

import (
	"context"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	DatabaseHealthy bool      `json:"database_healthy"`
	RedisHealthy    bool      `json:"redis_healthy"`
	ActiveJobs      int       `json:"active_jobs"`
	ServerTime      time.Time `json:"server_time"`
}

type Health struct {
	db      Pinger
	redis   Pinger
	reports *ReportService
	now     func() time.Time
}

func NewHealthUsecase(db, redis Pinger, reports *ReportService) *Health {
	return &Health{db: db, redis: redis, reports: reports, now: time.Now}
}

func (u *Health) Check(ctx context.Context) HealthStatus {
	st := HealthStatus{
		DatabaseHealthy: ping(ctx, u.db),
		RedisHealthy:    ping(ctx, u.redis),
		ServerTime:      u.now().UTC(),
	}
	if u.reports != nil {
		st.ActiveJobs = u.reports.ActiveJobs()
	}
	return st
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(pingCtx) == nil
}
