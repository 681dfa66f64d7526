package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/logger"
	"store-monitor/internal/usecase"
)

type StatusSource interface {
	Status(ctx context.Context, id uuid.UUID) (usecase.StatusView, error)
}

// Handler upgrades GET /ws/reports/{id} and streams status events for
// that report, starting with the current status.
type Handler struct {
	hub      *Hub
	status   StatusSource
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, status StatusSource, allowedOrigins []string, l *logrus.Logger) *Handler {
	return &Handler{
		hub:    hub,
		status: status,
		logger: logger.OrDefault(l),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	set := map[string]bool{}
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /ws/reports/{id}", h)
	return mux
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.hub == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	var initial *usecase.StatusView
	if h.status != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		view, err := h.status.Status(ctx, id)
		cancel()
		switch {
		case errors.Is(err, usecase.ErrReportNotFound):
			http.Error(w, "report not found", http.StatusNotFound)
			return
		case err == nil:
			initial = &view
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("[WS] upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, id)
	if initial != nil {
		if b, err := encodeEvent(jobFromView(*initial)); err == nil {
			client.send <- b
		}
	}
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}

func jobFromView(v usecase.StatusView) report.Job {
	return report.Job{
		ReportID:  v.ReportID,
		Status:    v.Status,
		Progress:  v.Progress,
		Message:   v.Message,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
