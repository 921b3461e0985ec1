// Package events publishes domain events to Kafka.
package events

import (
	"encoding/json"
	"time"

	"academy-platform/internal/domain"
)

const (
	EventOrderCreated = "OrderCreated"
	producerName      = "academy-platform"
)

// Envelope wraps every event payload on the wire.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

type OrderCreatedPayload struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	DealerID    string      `json:"dealer_id"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	Total       float64     `json:"total"`
}

// NewOrderCreated builds the OrderCreated payload for a persisted order.
func NewOrderCreated(order *domain.ShopOrder) OrderCreatedPayload {
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		line := OrderItem{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
		if item.VariantID != nil {
			line.VariantID = item.VariantID.String()
		}
		items = append(items, line)
	}

	return OrderCreatedPayload{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		DealerID:    order.DealerID.String(),
		Status:      string(order.Status),
		Items:       items,
		Subtotal:    order.Subtotal,
		Total:       order.Total,
	}
}
