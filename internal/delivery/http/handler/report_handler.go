package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/delivery/http/dto"
	"store-monitor/internal/delivery/http/middleware"
	"store-monitor/internal/domain/report"
	"store-monitor/internal/logger"
	"store-monitor/internal/pkg/response"
	"store-monitor/internal/usecase"
)

type ReportUsecase interface {
	Trigger(ctx context.Context) (report.Job, error)
	Status(ctx context.Context, id uuid.UUID) (usecase.StatusView, error)
	Download(ctx context.Context, id uuid.UUID) (string, error)
}

type ReportHandler struct {
	uc       ReportUsecase
	validate *validator.Validate
	log      *logrus.Logger
}

func NewReportHandler(uc ReportUsecase, l *logrus.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, validate: validator.New(), log: logger.OrDefault(l)}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/reports", h.Trigger)
	r.Get("/reports/trigger", h.Trigger)
	r.Get("/reports/:id", h.Status)
	r.Get("/reports/:id/download", h.Download)
}

func (h *ReportHandler) Trigger(c fiber.Ctx) error {
	job, err := h.uc.Trigger(c.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrIDCollision) {
			return middleware.NewAppError(fiber.StatusServiceUnavailable, "", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}

	h.log.WithField("report_id", job.ReportID).Info("[HTTP] report triggered")
	return response.Success(c, fiber.StatusAccepted, "Report generation started", dto.TriggerReportResponse{
		ReportID: job.ReportID,
		Status:   job.Status,
	})
}

func (h *ReportHandler) Status(c fiber.Ctx) error {
	id, err := h.reportID(c)
	if err != nil {
		return err
	}

	view, err := h.uc.Status(c.Context(), id)
	if err != nil {
		return mapReportError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ReportStatusResponse{
		ReportID:            view.ReportID,
		Status:              view.Status,
		Progress:            view.Progress,
		Message:             view.Message,
		CreatedAt:           view.CreatedAt,
		UpdatedAt:           view.UpdatedAt,
		DownloadURL:         view.DownloadURL,
		EstimatedCompletion: view.EstimatedCompletion,
	})
}

func (h *ReportHandler) Download(c fiber.Ctx) error {
	id, err := h.reportID(c)
	if err != nil {
		return err
	}

	path, err := h.uc.Download(c.Context(), id)
	if err != nil {
		return mapReportError(err)
	}
	return c.Download(path, fmt.Sprintf("store_report_%s.csv", id))
}

func (h *ReportHandler) reportID(c fiber.Ctx) (uuid.UUID, error) {
	p := dto.ReportIDParam{ID: c.Params("id")}
	if err := h.validate.Struct(p); err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid report id", nil, err)
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid report id", nil, err)
	}
	return id, nil
}

func mapReportError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrReportNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Report not found", nil, err)
	case errors.Is(err, usecase.ErrReportNotReady):
		return middleware.NewAppError(fiber.StatusConflict, "Report not ready", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}
