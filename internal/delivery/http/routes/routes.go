package routes

import (
	"github.com/gofiber/fiber/v3"

	"store-monitor/internal/delivery/http/handler"
	"store-monitor/internal/delivery/http/middleware"
)

type Registry struct {
	health  *handler.HealthHandler
	reports *handler.ReportHandler
	auth    *middleware.AuthMiddleware
}

func NewRegistry(health *handler.HealthHandler, reports *handler.ReportHandler, auth *middleware.AuthMiddleware) *Registry {
	return &Registry{health: health, reports: reports, auth: auth}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	if r.reports == nil {
		return
	}
	v1 := app.Group("/api/v1", r.auth.Middleware())
	r.reports.RegisterRoutes(v1)
}
