package order

import (
	"context"
	"time"

	"github.com/mpatrascu/order-desk/pkg/dbmap"
	"github.com/mpatrascu/order-desk/pkg/validate"
)

// Order is a client's request for a quantity of one product. Immutable once
// persisted, except for the store-generated identity written back on insert.
type Order struct {
	ID        int64
	ClientID  int64
	ProductID int64
	Quantity  int64
	OrderDate time.Time
}

// Validate checks the fast-fail rules for order placement. Referential
// existence of the client and product is only established inside the
// placement transaction.
func (o *Order) Validate() error {
	if o.ClientID <= 0 {
		return &validate.Error{Entity: "order", Field: "clientId", Reason: "must reference a client"}
	}
	if o.ProductID <= 0 {
		return &validate.Error{Entity: "order", Field: "productId", Reason: "must reference a product"}
	}
	if o.Quantity <= 0 {
		return &validate.Error{Entity: "order", Field: "quantity", Reason: "must be positive"}
	}
	return nil
}

// OrderView is the read-only listing projection of an order joined with its
// client and product names. Derived on read, never persisted.
type OrderView struct {
	ID          int64
	ClientName  string
	ProductName string
	Quantity    int64
	OrderDate   time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Insert(ctx context.Context, q dbmap.Querier, o *Order) error
	FindAll(ctx context.Context, q dbmap.Querier) ([]Order, error)
	ListViews(ctx context.Context, q dbmap.Querier) ([]OrderView, error)
}
