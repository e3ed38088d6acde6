package outbox

import (
	"time"
)

// Message represents an order event waiting to be published to RabbitMQ.
// Rows are written in the same transaction as the order change they
// describe and drained by the outbox worker.
type Message struct {
	ID           int64
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
