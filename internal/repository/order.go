package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/internal/domain/order"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

const listOrderViewsSQL = `SELECT o.id, c.name, p.product_name, o.quantity, o.order_date
	FROM "order" o
	JOIN "client" c ON c.id = o.client_id
	JOIN "product" p ON p.id = o.product_id
	ORDER BY o.id`

var orderSchema = dbmap.Schema[order.Order]{
	Table:  "order",
	Entity: "order",
	ID:     func(o *order.Order) *int64 { return &o.ID },
	Fields: []dbmap.Field[order.Order]{
		dbmap.Column("clientId", func(o *order.Order) *int64 { return &o.ClientID }),
		dbmap.Column("productId", func(o *order.Order) *int64 { return &o.ProductID }),
		dbmap.Column("quantity", func(o *order.Order) *int64 { return &o.Quantity }),
		dbmap.Column("orderDate", func(o *order.Order) *time.Time { return &o.OrderDate }),
	},
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on the generic mapper, plus
// the listing projection join.
type OrderRepository struct {
	mapper *dbmap.Mapper[order.Order]
}

// NewOrderRepository returns an OrderRepository.
func NewOrderRepository(lg *zap.Logger) *OrderRepository {
	return &OrderRepository{mapper: dbmap.NewMapper(orderSchema, lg)}
}

func (r *OrderRepository) Insert(ctx context.Context, q dbmap.Querier, o *order.Order) error {
	return r.mapper.Insert(ctx, q, o)
}

func (r *OrderRepository) FindAll(ctx context.Context, q dbmap.Querier) ([]order.Order, error) {
	return r.mapper.FindAll(ctx, q)
}

// ListViews returns the order listing joined with client and product names,
// oldest order first.
func (r *OrderRepository) ListViews(ctx context.Context, q dbmap.Querier) ([]order.OrderView, error) {
	rows, err := q.Query(ctx, listOrderViewsSQL)
	if err != nil {
		return nil, &dbmap.PersistenceError{Op: "list views", Entity: "order", Err: err}
	}
	views, err := pgx.CollectRows(rows, scanOrderView)
	if err != nil {
		return nil, &dbmap.PersistenceError{Op: "list views", Entity: "order", Err: err}
	}
	return views, nil
}

func scanOrderView(row pgx.CollectableRow) (order.OrderView, error) {
	var v order.OrderView
	err := row.Scan(&v.ID, &v.ClientName, &v.ProductName, &v.Quantity, &v.OrderDate)
	return v, err
}
