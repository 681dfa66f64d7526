package report

import (
	"time"

	"github.com/google/uuid"

	"store-monitor/internal/domain/uptime"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the status record kept in the key-value store.
type Job struct {
	ReportID  uuid.UUID  `json:"report_id"`
	Status    Status     `json:"status"`
	Progress  int        `json:"progress"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Row struct {
	StoreID         uuid.UUID         `json:"store_id"`
	Window          uptime.WindowKind `json:"window"`
	UptimeMinutes   float64           `json:"uptime_minutes"`
	DowntimeMinutes float64           `json:"downtime_minutes"`
}

// Data is the record kept for a finished report, independent of the status TTL.
type Data struct {
	ReportID     uuid.UUID `json:"report_id"`
	ArtifactPath string    `json:"artifact_path"`
	RowCount     int       `json:"row_count"`
	StoreCount   int       `json:"store_count"`
	FailedStores int       `json:"failed_stores"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Record is the durable row in store_report_status.
type Record struct {
	ReportID     uuid.UUID
	Completed    bool
	ArtifactPath string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
