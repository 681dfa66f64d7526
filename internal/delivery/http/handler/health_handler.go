package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"store-monitor/internal/pkg/response"
	"store-monitor/internal/usecase"
)

type HealthUsecase interface {
	Check(ctx context.Context) usecase.HealthStatus
}

type HealthHandler struct {
	uc HealthUsecase
}

func NewHealthHandler(uc HealthUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Check)
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	if h.uc == nil {
		return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
	}
	st := h.uc.Check(c.Context())
	if !st.DatabaseHealthy {
		return response.Error(c, fiber.StatusServiceUnavailable, "database unreachable", st)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}
