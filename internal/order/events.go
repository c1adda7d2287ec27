package order

import (
	"encoding/json"
	"time"

	"ms-pos/internal/models"
)

// OrderEvent is the payload streamed to the order-events topic on every
// lifecycle change.
type OrderEvent struct {
	Type      string        `json:"type"`
	Order     *models.Order `json:"order"`
	Timestamp time.Time     `json:"timestamp"`
}

func marshalEvent(event string, order *models.Order) ([]byte, error) {
	return json.Marshal(OrderEvent{
		Type:      event,
		Order:     order,
		Timestamp: time.Now().UTC(),
	})
}
