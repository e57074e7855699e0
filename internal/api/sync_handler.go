package api

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SyncHandler streams the change feed to clients over server-sent events
type SyncHandler struct {
	hub *store.Hub
	log zerolog.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(hub *store.Hub, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		hub: hub,
		log: log.With().Str("handler", "sync").Logger(),
	}
}

// Watch handles GET /v1/sync/watch?collection=
// An empty collection watches every collection. Heartbeat comments keep
// idle connections from being reaped by proxies.
func (h *SyncHandler) Watch(c *gin.Context) {
	events, unsubscribe := h.hub.Subscribe(c.Query("collection"))
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Error().Err(err).Msg("Failed to encode event")
				return true
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			return true
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
