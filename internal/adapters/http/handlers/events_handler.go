package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"lifelink-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// EventsHandler streams data-change events over SSE. Clients use the stream
// as an invalidation signal: on every event they re-run their read queries,
// so a dropped event only delays a refresh, never corrupts one.
type EventsHandler struct {
	feed *services.ChangeFeed
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(feed *services.ChangeFeed) *EventsHandler {
	return &EventsHandler{feed: feed}
}

// Stream handles the SSE subscription
// @Summary Change event stream
// @Description Server-sent events signalling that requests, inventory, donations or messages changed
// @Tags Events
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Router /events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	clientID := fmt.Sprintf("sse-%d-%d", userID, time.Now().UnixNano())

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	events, cancel := h.feed.Subscribe()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		// Send initial connection event
		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", clientID)
		w.Flush()

		// Heartbeat keeps intermediaries from closing the idle stream
		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				writeChangeEvent(w, event)
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE client disconnected: %s", clientID)
					return
				}

			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE client disconnected: %s", clientID)
					return
				}
			}
		}
	})

	return nil
}

// writeChangeEvent writes a formatted SSE event to the writer
func writeChangeEvent(w *bufio.Writer, event services.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
}

// SetBodyStreamWriter expects a fasthttp.StreamWriter
var _ fasthttp.StreamWriter = func(w *bufio.Writer) {}
