package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/domain/report"
	"store-monitor/internal/logger"
)

type ReportStatusEvent struct {
	Type      string     `json:"type"`
	Job       report.Job `json:"job"`
	Timestamp string     `json:"timestamp"`
}

type message struct {
	reportID uuid.UUID
	payload  []byte
}

// Hub fans report status events out to the clients watching that report.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *logrus.Logger
}

func NewHub(l *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan message, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger.OrDefault(l),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mutex.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.reportID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.reportID] = set
			}
			set[client] = true
			h.mutex.Unlock()
			h.logger.WithField("report_id", client.reportID).Debug("[WS] client subscribed")

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case msg := <-h.broadcast:
			h.mutex.RLock()
			snapshot := make([]*Client, 0, len(h.clients[msg.reportID]))
			for c := range h.clients[msg.reportID] {
				snapshot = append(snapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- msg.payload:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set := h.clients[client.reportID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.reportID)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	default:
		h.logger.Warn("[WS] unregister queue full")
	}
}

// Notify publishes job to the clients subscribed to its report. It never
// blocks the caller; events are dropped when the buffer is full.
func (h *Hub) Notify(_ context.Context, job report.Job) {
	if h == nil {
		return
	}
	b, err := encodeEvent(job)
	if err != nil {
		h.logger.WithError(err).Warn("[WS] encode event")
		return
	}
	select {
	case h.broadcast <- message{reportID: job.ReportID, payload: b}:
	default:
		h.logger.WithField("report_id", job.ReportID).Warn("[WS] broadcast dropped, buffer full")
	}
}

func (h *Hub) ClientCount(reportID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[reportID])
}

func encodeEvent(job report.Job) ([]byte, error) {
	return json.Marshal(ReportStatusEvent{
		Type:      "report_status",
		Job:       job,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
