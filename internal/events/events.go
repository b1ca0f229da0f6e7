package events

import (
	"time"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
)

const (
	TypeOrderCreated = "order.created"
	TypeOrderUpdated = "order.updated"
	TypeOrderDeleted = "order.deleted"
)

// OrderEvent is the payload delivered to relay listeners and, when the
// Kafka bridge is enabled, mirrored to the order-events topic. Order is a
// full snapshot taken at emit time.
type OrderEvent struct {
	EventID   string        `json:"eventId"`
	Type      string        `json:"type"`
	Order     *domain.Order `json:"order"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"requestId,omitempty"`
}
