package server

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	eventChange    = "change"
	eventHeartbeat = "heartbeat"
	eventReady     = "ready"
	eventSource    = "filmfolio"
)

// handleEvents streams store change events as server-sent events until the
// client disconnects. Clients re-fetch the affected resource on each event.
func (h *httpHandler) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.store.Subscribe(ctx)
	defer cleanup()

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(eventReady, gin.H{"source": eventSource, "timestamp": h.clock().UTC()})
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(eventChange, event)
			return true
		case <-heartbeat.C:
			c.SSEvent(eventHeartbeat, gin.H{"source": eventSource, "timestamp": h.clock().UTC()})
			return true
		}
	})
}
