package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/events"
)

type EventsHandler struct {
	relay  *events.Relay
	logger *zap.Logger
}

func NewEventsHandler(relay *events.Relay, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		relay:  relay,
		logger: logger,
	}
}

type streamPayload struct {
	Type      string        `json:"type"`
	Order     *domain.Order `json:"order"`
	Timestamp time.Time     `json:"timestamp"`
}

// StreamOrders holds an SSE stream open and forwards order events the
// caller is allowed to see. Scope filtering happens server-side before the
// write; a seller's stream never carries another seller's orders.
func (h *EventsHandler) StreamOrders(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondError(c, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Buffered so a slow client cannot stall the relay's synchronous emit;
	// events beyond the buffer are dropped for this stream.
	ch := make(chan events.OrderEvent, 16)
	unsubscribe := h.relay.Subscribe(func(evt events.OrderEvent) {
		if !visibleTo(ident, evt.Order) {
			return
		}
		select {
		case ch <- evt:
		default:
			h.logger.Warn("dropping order event for slow stream",
				zap.String("event_id", evt.EventID),
				zap.String("user_id", ident.UserID))
		}
	})
	if unsubscribe == nil {
		respondError(c, http.StatusServiceUnavailable, "too many open streams")
		return
	}
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case evt := <-ch:
			data, err := json.Marshal(streamPayload{
				Type:      evt.Type,
				Order:     evt.Order,
				Timestamp: evt.Timestamp,
			})
			if err != nil {
				h.logger.Error("failed to marshal stream payload", zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: order-event\ndata: %s\n\n", data)
			flusher.Flush()
		case <-heartbeat.C:
			// Comment frame keeps intermediaries from closing idle streams.
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func visibleTo(ident domain.Identity, order *domain.Order) bool {
	if order == nil {
		return false
	}
	switch ident.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSeller:
		return order.SellerID == ident.UserID
	case domain.RoleCustomer:
		return order.CustomerID == ident.UserID
	}
	return false
}
