package bill

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mpatrascu/order-desk/internal/domain/client"
	"github.com/mpatrascu/order-desk/internal/domain/product"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

// ErrNotFound is returned when no bill exists for a requested order.
var ErrNotFound = errors.New("bill not found")

// Bill is an immutable, denormalized snapshot of an order's billing facts.
// Client and product names are copies, not references: a bill stays
// readable even if the client or product is later renamed or deleted.
type Bill struct {
	ID          int64
	OrderID     int64
	ClientName  string
	ProductName string
	Quantity    int64
	TotalPrice  decimal.Decimal
	OrderDate   time.Time
}

// Generate derives the bill snapshot for a persisted order. The product's
// live price is read here and frozen into TotalPrice as a fixed-point
// decimal; later price changes never alter an issued bill.
func Generate(orderID, quantity int64, c *client.Client, p *product.Product, at time.Time) Bill {
	return Bill{
		OrderID:     orderID,
		ClientName:  c.Name,
		ProductName: p.ProductName,
		Quantity:    quantity,
		TotalPrice:  p.Price.Mul(decimal.NewFromInt(quantity)),
		OrderDate:   at,
	}
}

// Invoice renders the bill as a printable invoice.
func (b *Bill) Invoice() string {
	return fmt.Sprintf(`============= INVOICE =============
Order ID: %d
Invoice ID: %d
Date: %s
--------------------------------
Client: %s
Product: %s
Quantity: %d
--------------------------------
TOTAL: $%s
==================================
`,
		b.OrderID,
		b.ID,
		b.OrderDate.Format("2006-01-02 15:04"),
		b.ClientName,
		b.ProductName,
		b.Quantity,
		b.TotalPrice.StringFixed(2),
	)
}

// Repository defines persistence operations for bills. Bills are
// append-only: there is no update or delete.
type Repository interface {
	Insert(ctx context.Context, q dbmap.Querier, b *Bill) error
	FindByOrderID(ctx context.Context, q dbmap.Querier, orderID int64) (*Bill, error)
	FindAll(ctx context.Context, q dbmap.Querier) ([]Bill, error)
}
