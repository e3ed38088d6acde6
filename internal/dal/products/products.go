package products

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/altamart/orders/internal/dal/rabbitmq"
	"github.com/altamart/orders/internal/service/models/product"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// RPCClient calls the product service over RabbitMQ request/reply. One
// batched validate_products round trip per call, no retries; the transport
// owns any retry policy.
type RPCClient struct {
	client  *rabbitmq.Client
	queue   string
	timeout time.Duration
}

// NewRPCClient creates a new product validator client.
func NewRPCClient(client *rabbitmq.Client) *RPCClient {
	queue := viper.GetString("rabbitmq.products_queue")
	if queue == "" {
		queue = "validate_products"
	}

	timeoutSeconds := viper.GetInt("rabbitmq.rpc_timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 10
	}

	return &RPCClient{
		client:  client,
		queue:   queue,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

// ValidateProducts sends the batch of product ids to the product service
// and blocks until the correlated reply arrives or the timeout fires.
func (c *RPCClient) ValidateProducts(
	ctx context.Context,
	ids []string,
) ([]product.Product, error) {
	ch := c.client.Channel()

	replyQueue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare reply queue: %w", err)
	}

	corrID := uuid.NewString()

	deliveries, err := ch.Consume(replyQueue.Name, corrID, true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume reply queue: %w", err)
	}
	defer func() {
		_ = ch.Cancel(corrID, false)
	}()

	body, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product ids: %w", err)
	}

	err = ch.Publish("", c.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: corrID,
		ReplyTo:       replyQueue.Name,
		Body:          body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish validate_products request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("validate_products call: %w", ctx.Err())
		case d, ok := <-deliveries:
			if !ok {
				return nil, fmt.Errorf("reply channel closed before validate_products response")
			}
			if d.CorrelationId != corrID {
				continue
			}

			return decodeValidateResponse(d.Body)
		}
	}
}

// decodeValidateResponse parses the product service reply, which is either
// a product list or an error envelope surfaced verbatim.
func decodeValidateResponse(body []byte) ([]product.Product, error) {
	var result []product.Product
	if err := json.Unmarshal(body, &result); err == nil {
		return result, nil
	}

	var envelope struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return nil, fmt.Errorf(
			"product service error (status %d): %s",
			envelope.Status,
			envelope.Message,
		)
	}

	return nil, fmt.Errorf("unexpected validate_products response: %s", body)
}
