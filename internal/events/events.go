// Package events publishes storefront domain events to RabbitMQ.
package events

import "time"

// OrderPlaced is published after an order and its lines are committed.
// It carries enough data for consumers to notify or analyse without
// querying the storefront database.
type OrderPlaced struct {
	OrderID       uint        `json:"order_id"`
	PrincipalID   string      `json:"principal_id"`
	PrincipalKind string      `json:"principal_kind"`
	CustomerEmail string      `json:"customer_email"`
	Total         float64     `json:"total"`
	Lines         []OrderLine `json:"lines"`
	PlacedAt      time.Time   `json:"placed_at"`
}

// OrderLine is one purchased product of an OrderPlaced event.
type OrderLine struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
