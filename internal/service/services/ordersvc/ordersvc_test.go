package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/altamart/orders/internal/dal/interfaces/iorderitemrepo"
	"github.com/altamart/orders/internal/dal/interfaces/iorderrepo"
	"github.com/altamart/orders/internal/dal/interfaces/ioutboxrepo"
	"github.com/altamart/orders/internal/service/errs"
	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/orderitem"
	"github.com/altamart/orders/internal/service/models/outbox"
	"github.com/altamart/orders/internal/service/models/product"
	"github.com/altamart/orders/internal/service/models/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockProductsClient struct {
	mock.Mock
}

func (m *MockProductsClient) ValidateProducts(
	ctx context.Context,
	ids []string,
) ([]product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

type MockOrderRepo struct {
	mock.Mock
}

// Insert echoes the order back on success, mirroring the RETURNING clause.
func (m *MockOrderRepo) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	args := m.Called(ctx, o)
	if err := args.Error(1); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (m *MockOrderRepo) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepo) Count(ctx context.Context, st *status.Status) (int64, error) {
	args := m.Called(ctx, st)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(
	ctx context.Context,
	id string,
	st status.Status,
) (order.Order, error) {
	args := m.Called(ctx, id, st)
	if args.Get(0) == nil {
		return order.Order{}, args.Error(1)
	}
	return args.Get(0).(order.Order), args.Error(1)
}

type MockOrderItemRepo struct {
	mock.Mock
}

// BulkInsert echoes the items back on success.
func (m *MockOrderItemRepo) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	args := m.Called(ctx, orderItems)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return orderItems, nil
}

func (m *MockOrderItemRepo) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orderitem.OrderItem), args.Error(1)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Insert(ctx context.Context, msg outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockOutboxRepo) GetPendingMessages(
	ctx context.Context,
	limit int,
) ([]outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) UpdateRetry(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	return m.Called(ctx, id, retryCount, lastError, nextRetryAt).Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
	orders *MockOrderRepo
	items  *MockOrderItemRepo
	outbox *MockOutboxRepo
}

func newMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		orders: new(MockOrderRepo),
		items:  new(MockOrderItemRepo),
		outbox: new(MockOutboxRepo),
	}
}

func (u *MockUnitOfWork) Begin(ctx context.Context) error {
	return u.Called(ctx).Error(0)
}

func (u *MockUnitOfWork) Commit(ctx context.Context) error {
	return u.Called(ctx).Error(0)
}

func (u *MockUnitOfWork) Rollback(ctx context.Context) error {
	return u.Called(ctx).Error(0)
}

func (u *MockUnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orders
}

func (u *MockUnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.items
}

func (u *MockUnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outbox
}

func newTestService(work *MockUnitOfWork, products *MockProductsClient) *OrderService {
	return MustNewOrderService(
		WithProductsClient(products),
		WithUnitOfWorkFactory(func() unitOfWork { return work }),
	)
}

// --- Tests ---

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	request := order.CreateOrderModel{
		Items: []order.CreateOrderItemModel{
			{ProductID: "P1", Quantity: 2},
			{ProductID: "P2", Quantity: 1},
		},
	}

	catalog := []product.Product{
		{ID: "P1", Name: "Widget", Price: 10},
		{ID: "P2", Name: "Gadget", Price: 5},
	}

	t.Run("Success", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		productsClient.On("ValidateProducts", ctx, []string{"P1", "P2"}).Return(catalog, nil)

		work.On("Begin", ctx).Return(nil)
		work.On("Commit", ctx).Return(nil)
		work.On("Rollback", ctx).Return(nil)

		work.orders.On("Insert", ctx, mock.MatchedBy(func(o order.Order) bool {
			return o.TotalAmount == 25 &&
				o.TotalItems == 3 &&
				o.Status == status.StatusPending &&
				o.ID != ""
		})).Return(order.Order{}, nil)

		work.items.On("BulkInsert", ctx, mock.MatchedBy(func(items []orderitem.OrderItem) bool {
			return len(items) == 2 &&
				items[0].ProductID == "P1" && items[0].Price == 10 && items[0].Quantity == 2 &&
				items[1].ProductID == "P2" && items[1].Price == 5 && items[1].Quantity == 1
		})).Return(nil, nil)

		work.outbox.On("Insert", ctx, mock.MatchedBy(func(msg outbox.Message) bool {
			return msg.RoutingKey == "order.created" && len(msg.Payload) > 0
		})).Return(nil)

		created, err := svc.Create(ctx, request)
		require.NoError(t, err)

		assert.Equal(t, float64(25), created.TotalAmount)
		assert.Equal(t, 3, created.TotalItems)
		assert.Equal(t, status.StatusPending, created.Status)
		require.Len(t, created.OrderItems, 2)
		assert.Equal(t, "Widget", created.OrderItems[0].Name)
		assert.Equal(t, "Gadget", created.OrderItems[1].Name)

		work.AssertExpectations(t)
		work.orders.AssertExpectations(t)
		work.items.AssertExpectations(t)
		work.outbox.AssertExpectations(t)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		_, err := svc.Create(ctx, order.CreateOrderModel{})
		assert.ErrorIs(t, err, errs.ErrEmptyOrder)
		productsClient.AssertNotCalled(t, "ValidateProducts", mock.Anything, mock.Anything)
	})

	t.Run("ProductMissing", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		// Validator covers P1 only
		productsClient.On("ValidateProducts", ctx, []string{"P1", "P2"}).
			Return([]product.Product{{ID: "P1", Name: "Widget", Price: 10}}, nil)

		_, err := svc.Create(ctx, request)
		assert.ErrorIs(t, err, errs.ErrProductNotFound)

		// Nothing reaches persistence
		work.AssertNotCalled(t, "Begin", mock.Anything)
		work.orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("ValidatorError", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		productsClient.On("ValidateProducts", ctx, []string{"P1", "P2"}).
			Return(nil, errors.New("transport timeout"))

		_, err := svc.Create(ctx, request)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errs.ErrProductNotFound)
		work.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("DuplicateProductValidatedOnce", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		productsClient.On("ValidateProducts", ctx, []string{"P1"}).
			Return([]product.Product{{ID: "P1", Name: "Widget", Price: 10}}, nil)

		work.On("Begin", ctx).Return(nil)
		work.On("Commit", ctx).Return(nil)
		work.On("Rollback", ctx).Return(nil)
		work.orders.On("Insert", ctx, mock.MatchedBy(func(o order.Order) bool {
			return o.TotalAmount == 50 && o.TotalItems == 5
		})).Return(order.Order{}, nil)
		work.items.On("BulkInsert", ctx, mock.Anything).Return(nil, nil)
		work.outbox.On("Insert", ctx, mock.Anything).Return(nil)

		created, err := svc.Create(ctx, order.CreateOrderModel{
			Items: []order.CreateOrderItemModel{
				{ProductID: "P1", Quantity: 2},
				{ProductID: "P1", Quantity: 3},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, float64(50), created.TotalAmount)
		productsClient.AssertExpectations(t)
	})

	t.Run("InsertErrorRollsBack", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		productsClient.On("ValidateProducts", ctx, []string{"P1", "P2"}).Return(catalog, nil)
		work.On("Begin", ctx).Return(nil)
		work.On("Rollback", ctx).Return(nil)
		work.orders.On("Insert", ctx, mock.Anything).
			Return(order.Order{}, errors.New("db error"))

		_, err := svc.Create(ctx, request)
		require.Error(t, err)
		work.AssertCalled(t, "Rollback", ctx)
		work.AssertNotCalled(t, "Commit", mock.Anything)
	})
}

func TestOrderService_FindOne(t *testing.T) {
	ctx := context.Background()
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	t.Run("Success", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		stored := order.Order{
			ID:          id,
			Status:      status.StatusPending,
			TotalAmount: 25,
			TotalItems:  3,
		}
		items := []orderitem.OrderItem{
			{OrderID: id, ProductID: "P1", Quantity: 2, Price: 10},
			{OrderID: id, ProductID: "P2", Quantity: 1, Price: 5},
		}

		work.orders.On("Query", ctx, &order.QueryOrdersModel{Ids: []string{id}}).
			Return([]order.Order{stored}, nil)
		work.items.On("Query", ctx, &orderitem.QueryOrderItemsModel{OrderIds: []string{id}}).
			Return(items, nil)
		productsClient.On("ValidateProducts", ctx, []string{"P1", "P2"}).
			Return([]product.Product{
				{ID: "P1", Name: "Widget", Price: 12},
				{ID: "P2", Name: "Gadget", Price: 6},
			}, nil)

		found, err := svc.FindOne(ctx, id)
		require.NoError(t, err)

		// Names reflect read-time catalog data, prices stay snapshots
		require.Len(t, found.OrderItems, 2)
		assert.Equal(t, "Widget", found.OrderItems[0].Name)
		assert.Equal(t, float64(10), found.OrderItems[0].Price)
		assert.Equal(t, float64(25), found.TotalAmount)
	})

	t.Run("NotFound", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		work.orders.On("Query", ctx, mock.Anything).Return([]order.Order{}, nil)

		_, err := svc.FindOne(ctx, id)
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
		productsClient.AssertNotCalled(t, "ValidateProducts", mock.Anything, mock.Anything)
	})
}

func TestOrderService_FindAll(t *testing.T) {
	ctx := context.Background()

	t.Run("MetaAndWindow", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		work.orders.On("Count", ctx, (*status.Status)(nil)).Return(int64(25), nil)
		work.orders.On("Query", ctx, &order.QueryOrdersModel{
			Limit:  10,
			Offset: 10,
		}).Return([]order.Order{{ID: "a"}, {ID: "b"}}, nil)

		page, err := svc.FindAll(ctx, order.PageRequest{Page: 2, Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, 2, page.Meta.Page)
		assert.Equal(t, int64(25), page.Meta.Total)
		assert.Equal(t, 3, page.Meta.LastPage)
		assert.Len(t, page.Data, 2)
	})

	t.Run("EmptyResult", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		st := status.StatusPaid
		work.orders.On("Count", ctx, &st).Return(int64(0), nil)
		work.orders.On("Query", ctx, mock.Anything).Return([]order.Order(nil), nil)

		page, err := svc.FindAll(ctx, order.PageRequest{Page: 1, Limit: 10, Status: &st})
		require.NoError(t, err)

		assert.Equal(t, 0, page.Meta.LastPage)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})
}

func TestOrderService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	setupFindOne := func(work *MockUnitOfWork, productsClient *MockProductsClient, current status.Status) {
		work.orders.On("Query", ctx, &order.QueryOrdersModel{Ids: []string{id}}).
			Return([]order.Order{{ID: id, Status: current, TotalAmount: 25, TotalItems: 3}}, nil)
		work.items.On("Query", ctx, mock.Anything).
			Return([]orderitem.OrderItem{{OrderID: id, ProductID: "P1", Quantity: 3, Price: 10}}, nil)
		productsClient.On("ValidateProducts", ctx, []string{"P1"}).
			Return([]product.Product{{ID: "P1", Name: "Widget", Price: 10}}, nil)
	}

	t.Run("SameStatusIsNoOp", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		setupFindOne(work, productsClient, status.StatusPending)

		updated, err := svc.ChangeStatus(ctx, id, status.StatusPending)
		require.NoError(t, err)

		assert.Equal(t, status.StatusPending, updated.Status)
		work.AssertNotCalled(t, "Begin", mock.Anything)
		work.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		setupFindOne(work, productsClient, status.StatusPending)

		_, err := svc.ChangeStatus(ctx, id, status.StatusDelivered)
		assert.ErrorIs(t, err, status.ErrInvalidTransition)
		work.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		setupFindOne(work, productsClient, status.StatusPending)

		work.On("Begin", ctx).Return(nil)
		work.On("Commit", ctx).Return(nil)
		work.On("Rollback", ctx).Return(nil)
		work.orders.On("UpdateStatus", ctx, id, status.StatusPaid).
			Return(order.Order{ID: id, Status: status.StatusPaid, TotalAmount: 25, TotalItems: 3}, nil)
		work.outbox.On("Insert", ctx, mock.MatchedBy(func(msg outbox.Message) bool {
			return msg.RoutingKey == "order.status_changed"
		})).Return(nil)

		updated, err := svc.ChangeStatus(ctx, id, status.StatusPaid)
		require.NoError(t, err)

		assert.Equal(t, status.StatusPaid, updated.Status)
		// Items from the enriched lookup survive the status change
		require.Len(t, updated.OrderItems, 1)
		assert.Equal(t, "Widget", updated.OrderItems[0].Name)
		work.outbox.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		work := newMockUnitOfWork()
		productsClient := new(MockProductsClient)
		svc := newTestService(work, productsClient)

		work.orders.On("Query", ctx, mock.Anything).Return([]order.Order{}, nil)

		_, err := svc.ChangeStatus(ctx, id, status.StatusPaid)
		assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	})
}
