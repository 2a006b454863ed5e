// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// OrderCreatedEvent is published when an order is created. It carries
// enough information for the production pipeline to log or notify without
// querying the primary database.
type OrderCreatedEvent struct {
	OrderID    uint64 `json:"order_id"`
	UserID     uint64 `json:"user_id"`
	ClientID   uint64 `json:"client_id"`
	ClientName string `json:"client_name"`
	Product    string `json:"product"`
	Quantity   int    `json:"quantity"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}
