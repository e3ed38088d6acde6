package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/altamart/orders/internal/service/models/order"
	"github.com/altamart/orders/internal/service/models/orderitem"
	"github.com/altamart/orders/internal/service/models/status"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id          string    `db:"id"`
	Status      string    `db:"status"`
	TotalAmount float64   `db:"total_amount"`
	TotalItems  int       `db:"total_items"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	st, err := status.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:          o.Id,
		Status:      st,
		TotalAmount: o.TotalAmount,
		TotalItems:  o.TotalItems,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		OrderItems:  []orderitem.OrderItem{}, // Populated separately
	}, nil
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert inserts a single order and returns the inserted row.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	sql := `
		INSERT INTO orders (id, status, total_amount, total_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, total_amount, total_items, created_at, updated_at
	`

	row := r.conn.QueryRow(ctx, sql,
		o.ID,
		o.Status.String(),
		o.TotalAmount,
		o.TotalItems,
		o.CreatedAt,
		o.UpdatedAt,
	)

	var dal OrderDal
	if err := row.Scan(
		&dal.Id,
		&dal.Status,
		&dal.TotalAmount,
		&dal.TotalItems,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}
	model.OrderItems = append(model.OrderItems, o.OrderItems...)

	return *model, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(
			"id",
			"status",
			"total_amount",
			"total_items",
			"created_at",
			"updated_at",
		).
		From("orders")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if filter.Status != nil {
		query = query.Where(sq.Eq{"status": filter.Status.String()})
	}

	query = query.OrderBy("created_at ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.Status,
			&dal.TotalAmount,
			&dal.TotalItems,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of orders matching the optional status filter.
func (r *PostgresOrderRepository) Count(ctx context.Context, st *status.Status) (int64, error) {
	query := r.sb.Select("count(*)").From("orders")

	if st != nil {
		query = query.Where(sq.Eq{"status": st.String()})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return total, nil
}

// UpdateStatus sets a new status on the order and returns the updated row.
// Returns pgx.ErrNoRows when the order does not exist.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	st status.Status,
) (order.Order, error) {
	sql := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, status, total_amount, total_items, created_at, updated_at
	`

	row := r.conn.QueryRow(ctx, sql, id, st.String(), time.Now())

	var dal OrderDal
	if err := row.Scan(
		&dal.Id,
		&dal.Status,
		&dal.TotalAmount,
		&dal.TotalItems,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	); err != nil {
		return order.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}
