package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

// Hub pushes job record snapshots to websocket subscribers. It doubles
// as a pipeline sink: every save broadcasts to the job's subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*websocket.Conn]bool
	logger logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*websocket.Conn]bool),
		logger: log,
	}
}

// Save implements pipeline.Sink. Send errors unsubscribe the connection;
// a slow or dead client never blocks the flow.
func (h *Hub) Save(ctx context.Context, rec *models.PipelineResult) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[rec.JobID]))
	for conn := range h.subs[rec.JobID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug(ctx, "job %s: dropping progress subscriber: %v", rec.JobID, err)
			h.unsubscribe(rec.JobID, conn)
		}
	}
	return nil
}

// Handle serves one progress subscription. The connection stays open
// until the client disconnects.
func (h *Hub) Handle(c *websocket.Conn) {
	jobID := c.Params("id")
	defer c.Close()

	h.subscribe(jobID, c)
	defer h.unsubscribe(jobID, c)

	// Drain control frames; any read error means the client left.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) subscribe(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*websocket.Conn]bool)
	}
	h.subs[jobID][conn] = true
}

func (h *Hub) unsubscribe(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[jobID], conn)
	if len(h.subs[jobID]) == 0 {
		delete(h.subs, jobID)
	}
}
