package dto

import (
	"time"

	"github.com/google/uuid"

	"store-monitor/internal/domain/report"
)

type ReportIDParam struct {
	ID string `validate:"required,uuid"`
}

type TriggerReportResponse struct {
	ReportID uuid.UUID     `json:"report_id"`
	Status   report.Status `json:"status"`
}

type ReportStatusResponse struct {
	ReportID            uuid.UUID     `json:"report_id"`
	Status              report.Status `json:"status"`
	Progress            int           `json:"progress"`
	Message             string        `json:"message"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           *time.Time    `json:"updated_at,omitempty"`
	DownloadURL         string        `json:"download_url,omitempty"`
	EstimatedCompletion *time.Time    `json:"estimated_completion,omitempty"`
}
