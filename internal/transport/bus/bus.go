package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/altamart/orders/internal/dal/rabbitmq"
	"github.com/altamart/orders/internal/service/errs"
	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/status"
	"github.com/altamart/orders/internal/service/services/ordersvc"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// Command queues consumed by this service. Each carries one logical RPC
// pattern; replies go to the request's reply-to queue with its
// correlation id.
const (
	QueueCreateOrder       = "create_order"
	QueueFindAllOrders     = "find_all_orders"
	QueueFindOneOrder      = "find_one_order"
	QueueChangeOrderStatus = "change_order_status"
)

// service represents the service layer interface.
type service interface {
	Create(ctx context.Context, model order.CreateOrderModel) (*order.Order, error)
	FindOne(ctx context.Context, id string) (*order.Order, error)
	FindAll(ctx context.Context, req order.PageRequest) (*ordersvc.Page, error)
	ChangeStatus(ctx context.Context, id string, newStatus status.Status) (*order.Order, error)
}

type handlerFunc func(ctx context.Context, body []byte) (any, error)

// Bus consumes order commands from RabbitMQ and replies with the result
// or an error envelope.
type Bus struct {
	client  *rabbitmq.Client
	service service
	stop    chan struct{}
	done    chan struct{}
}

// NewBus creates a new Bus and declares the command queues.
func NewBus(client *rabbitmq.Client, service service) *Bus {
	queues := []string{
		QueueCreateOrder,
		QueueFindAllOrders,
		QueueFindOneOrder,
		QueueChangeOrderStatus,
	}

	for _, queue := range queues {
		_, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:       queue,
			Durable:    false,
			AutoDelete: false,
			Exclusive:  false,
			NoWait:     false,
		})
		if err != nil {
			panic(err)
		}
	}

	return &Bus{
		client:  client,
		service: service,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts consuming the command queues. Blocks until Shutdown.
func (b *Bus) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "orders-svc"
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(50)

	routes := map[string]handlerFunc{
		QueueCreateOrder:       b.handleCreateOrder,
		QueueFindAllOrders:     b.handleFindAllOrders,
		QueueFindOneOrder:      b.handleFindOneOrder,
		QueueChangeOrderStatus: b.handleChangeOrderStatus,
	}

	var wg sync.WaitGroup
	for queue, handle := range routes {
		msgs, err := b.client.Consume(rabbitmq.ConsumeConfig{
			Queue:    queue,
			Consumer: consumerTag + "." + queue,
		})
		if err != nil {
			return fmt.Errorf("failed to consume queue %s: %w", queue, err)
		}

		wg.Add(1)
		go func(queue string, handle handlerFunc, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			for {
				select {
				case <-b.stop:
					return
				case msg, ok := <-msgs:
					if !ok {
						slog.Info("Message channel closed", "queue", queue)

						return
					}

					g.Go(func() error {
						b.processMessage(gctx, queue, handle, msg)

						return nil
					})
				}
			}
		}(queue, handle, msgs)
	}

	slog.Info("Bus transport started", "consumer_tag", consumerTag)

	wg.Wait()
	close(b.done)

	if err := g.Wait(); err != nil {
		slog.Error("Error processing messages", "error", err)
	}

	return nil
}

// Shutdown stops the consumers and waits for in-flight handlers.
func (b *Bus) Shutdown(ctx context.Context) error {
	close(b.stop)

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processMessage runs one command handler and replies to the caller. The
// delivery is always acked: redelivery cannot fix a failed request and the
// caller already holds the error envelope.
func (b *Bus) processMessage(
	ctx context.Context,
	queue string,
	handle handlerFunc,
	msg amqp.Delivery,
) {
	ctx, span := otel.Tracer("orders-svc").Start(ctx, "Bus.processMessage "+queue)
	defer span.End()

	result, err := handle(ctx, msg.Body)
	if err != nil {
		if isClientError(err) {
			slog.Warn("Command rejected", "queue", queue, "error", err)
		} else {
			slog.Error("Command failed", "queue", queue, "error", err)
		}

		b.respond(msg, FromError(err))
	} else {
		b.respond(msg, result)
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "queue", queue, "error", err)
	}
}

// respond publishes the reply for a request/reply delivery. Fire-and-forget
// commands without a reply-to queue get no response.
func (b *Bus) respond(msg amqp.Delivery, body any) {
	if msg.ReplyTo == "" {
		return
	}

	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("Failed to marshal response", "error", err)

		return
	}

	err = b.client.Publish("", msg.ReplyTo, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: msg.CorrelationId,
		Body:          data,
	})
	if err != nil {
		slog.Error("Failed to publish response", "reply_to", msg.ReplyTo, "error", err)
	}
}

func (b *Bus) handleCreateOrder(ctx context.Context, body []byte) (any, error) {
	var req createOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}

	model, err := req.toModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}

	return b.service.Create(ctx, model)
}

func (b *Bus) handleFindAllOrders(ctx context.Context, body []byte) (any, error) {
	var req findAllRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
		}
	}

	model, err := req.toModel()
	if err != nil {
		return nil, err
	}

	return b.service.FindAll(ctx, model)
}

func (b *Bus) handleFindOneOrder(ctx context.Context, body []byte) (any, error) {
	var req findOneRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id must not be empty", errs.ErrInvalidPayload)
	}

	return b.service.FindOne(ctx, req.ID)
}

func (b *Bus) handleChangeOrderStatus(ctx context.Context, body []byte) (any, error) {
	var req changeStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id must not be empty", errs.ErrInvalidPayload)
	}

	st, err := status.ParseStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, req.Status)
	}

	return b.service.ChangeStatus(ctx, req.ID, st)
}
