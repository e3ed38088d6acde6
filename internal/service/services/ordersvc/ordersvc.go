package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/altamart/orders/internal/dal/interfaces/iorderitemrepo"
	"github.com/altamart/orders/internal/dal/interfaces/iorderrepo"
	"github.com/altamart/orders/internal/dal/interfaces/ioutboxrepo"
	"github.com/altamart/orders/internal/dal/interfaces/iproducts"
	"github.com/altamart/orders/internal/dal/postgres"
	"github.com/altamart/orders/internal/dal/uow"
	"github.com/altamart/orders/internal/service/errs"
	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/orderitem"
	"github.com/altamart/orders/internal/service/models/outbox"
	"github.com/altamart/orders/internal/service/models/pagination"
	"github.com/altamart/orders/internal/service/models/product"
	"github.com/altamart/orders/internal/service/models/status"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// OrderService orchestrates order creation, lookup and status changes. It
// talks to storage only through the unit of work and to the product
// service only through the products client.
type OrderService struct {
	pgClient *postgres.Client
	products iproducts.Client
	newUOW   func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithProductsClient sets the product validator client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductsClient(products iproducts.Client) option {
	return func(s *OrderService) {
		s.products = products
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// Page is a paginated list of orders. Rows carry no item names; only
// Create and FindOne responses are enriched.
type Page struct {
	Data []order.Order   `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// Create validates the requested products against the product service,
// computes the order aggregates from the returned price snapshots and
// persists the order with its items and an order.created outbox event in
// one transaction. Nothing is written if any step fails.
func (s *OrderService) Create(
	ctx context.Context,
	model order.CreateOrderModel,
) (*order.Order, error) {
	if len(model.Items) == 0 {
		return nil, errs.ErrEmptyOrder
	}

	ids := distinctProductIds(model.Items)

	validated, err := s.products.ValidateProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to validate products: %w", err)
	}
	byID := product.IndexByID(validated)

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", errs.ErrProductNotFound, id)
		}
	}

	now := time.Now()
	o := order.Order{
		ID:        uuid.NewString(),
		Status:    status.Initial(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]orderitem.OrderItem, 0, len(model.Items))
	for _, item := range model.Items {
		snapshot := byID[item.ProductID]
		o.TotalAmount += snapshot.Price * float64(item.Quantity)
		o.TotalItems += item.Quantity

		items = append(items, orderitem.OrderItem{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     snapshot.Price,
		})
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	insertedItems, err := work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return nil, err
	}
	inserted.OrderItems = insertedItems

	event, err := newOutboxMessage("order.created", inserted)
	if err != nil {
		return nil, err
	}
	if err := work.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	enrich(inserted.OrderItems, byID)

	return &inserted, nil
}

// FindOne looks up one order with its items and joins in current product
// names from the product service. Names are re-derived on every read so
// they reflect catalog data as of read time.
func (s *OrderService) FindOne(ctx context.Context, id string) (*order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		Ids: []string{id},
	})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrOrderNotFound, id)
	}
	o := orders[0]

	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []string{o.ID},
	})
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	validated, err := s.products.ValidateProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to validate products: %w", err)
	}

	enrich(o.OrderItems, product.IndexByID(validated))

	return &o, nil
}

// FindAll returns one page of orders matching the optional status filter
// together with pagination metadata. Rows are intentionally not enriched
// with product names to keep list responses light.
func (s *OrderService) FindAll(ctx context.Context, req order.PageRequest) (*Page, error) {
	work := s.newUOW()

	total, err := work.OrderRepository().Count(ctx, req.Status)
	if err != nil {
		return nil, err
	}

	window := pagination.Paginate(total, req.Page, req.Limit)

	data, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		Status: req.Status,
		Limit:  req.Limit,
		Offset: window.Offset,
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []order.Order{}
	}

	return &Page{
		Data: data,
		Meta: pagination.Meta{
			Page:     req.Page,
			Total:    total,
			LastPage: window.LastPage,
		},
	}, nil
}

// ChangeStatus advances the order to a new status. Requesting the status
// the order already has is an idempotent no-op with zero writes. Any other
// move must be allowed by the transition table.
func (s *OrderService) ChangeStatus(
	ctx context.Context,
	id string,
	newStatus status.Status,
) (*order.Order, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status == newStatus {
		return o, nil
	}

	if !status.CanTransition(o.Status, newStatus) {
		return nil, fmt.Errorf(
			"%w: %s -> %s",
			status.ErrInvalidTransition,
			o.Status,
			newStatus,
		)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	updated, err := work.OrderRepository().UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}

	event, err := newOutboxMessage("order.status_changed", updated)
	if err != nil {
		return nil, err
	}
	if err := work.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	o.Status = updated.Status
	o.UpdatedAt = updated.UpdatedAt

	return o, nil
}

// distinctProductIds extracts the unique product ids preserving request
// order; duplicates in the input are validated once.
func distinctProductIds(items []order.CreateOrderItemModel) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	return ids
}

// enrich attaches product names from a validator response to order items.
func enrich(items []orderitem.OrderItem, byID map[string]product.Product) {
	for i := range items {
		if snapshot, ok := byID[items[i].ProductID]; ok {
			items[i].Name = snapshot.Name
		}
	}
}

// newOutboxMessage builds an outbox event row carrying the order as JSON.
func newOutboxMessage(routingKey string, o order.Order) (outbox.Message, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return outbox.Message{}, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	exchange := viper.GetString("rabbitmq.events.exchange")
	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return outbox.Message{
		ExchangeName: exchange,
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   maxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}
