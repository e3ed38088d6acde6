package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/altamart/orders/internal/dal/postgres"
	"github.com/altamart/orders/internal/dal/products"
	"github.com/altamart/orders/internal/dal/rabbitmq"
	outboxrepo "github.com/altamart/orders/internal/dal/repositories/outbox/postgres"
	"github.com/altamart/orders/internal/jaeger"
	"github.com/altamart/orders/internal/service/services/ordersvc"
	"github.com/altamart/orders/internal/transport/bus"
	httptransport "github.com/altamart/orders/internal/transport/http"
	outboxworker "github.com/altamart/orders/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	bus            *bus.Bus
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	tracerShutdown func(ctx context.Context) error
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracerShutdown := jaeger.MustSetup()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithProductsClient(products.NewRPCClient(rabbitClient)),
	)

	busTransport := bus.NewBus(rabbitClient, orderSvc)

	transport := httptransport.NewHTTPTransport(orderSvc)
	transport.RegisterRoutes()

	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		orderSvc:       orderSvc,
		bus:            busTransport,
		transport:      transport,
		outboxWorker:   outboxWorker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		tracerShutdown: tracerShutdown,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())

	go func() {
		slog.Info("Starting bus transport")
		if err := a.bus.Run(workerCtx); err != nil {
			slog.Error("Bus transport error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go a.outboxWorker.Start(workerCtx)

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.bus.Shutdown(ctx); err != nil {
		slog.Error("Bus transport shutdown error", "error", err)
	} else {
		slog.Info("Bus transport stopped gracefully")
	}

	a.outboxWorker.Stop()
	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracerShutdown(ctx); err != nil {
		slog.Error("Tracer shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
