package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/internal/domain/bill"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

// Bills live in the append-only "log" table.
var billSchema = dbmap.Schema[bill.Bill]{
	Table:  "log",
	Entity: "bill",
	ID:     func(b *bill.Bill) *int64 { return &b.ID },
	Fields: []dbmap.Field[bill.Bill]{
		dbmap.Column("orderId", func(b *bill.Bill) *int64 { return &b.OrderID }),
		dbmap.Column("clientName", func(b *bill.Bill) *string { return &b.ClientName }),
		dbmap.Column("productName", func(b *bill.Bill) *string { return &b.ProductName }),
		dbmap.Column("quantity", func(b *bill.Bill) *int64 { return &b.Quantity }),
		dbmap.Column("totalPrice", func(b *bill.Bill) *decimal.Decimal { return &b.TotalPrice }),
		dbmap.Column("orderDate", func(b *bill.Bill) *time.Time { return &b.OrderDate }),
	},
}

var _ bill.Repository = (*BillRepository)(nil)

// BillRepository implements bill.Repository on the generic mapper.
type BillRepository struct {
	mapper *dbmap.Mapper[bill.Bill]
}

// NewBillRepository returns a BillRepository.
func NewBillRepository(lg *zap.Logger) *BillRepository {
	return &BillRepository{mapper: dbmap.NewMapper(billSchema, lg)}
}

func (r *BillRepository) Insert(ctx context.Context, q dbmap.Querier, b *bill.Bill) error {
	return r.mapper.Insert(ctx, q, b)
}

// FindByOrderID returns the bill issued for the given order, or nil when
// the order has none. One bill exists per order.
func (r *BillRepository) FindByOrderID(ctx context.Context, q dbmap.Querier, orderID int64) (*bill.Bill, error) {
	return r.mapper.FindOneBy(ctx, q, "orderId", orderID)
}

func (r *BillRepository) FindAll(ctx context.Context, q dbmap.Querier) ([]bill.Bill, error) {
	return r.mapper.FindAll(ctx, q)
}
