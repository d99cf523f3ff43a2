package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mpatrascu/order-desk/pkg/dbmap"
	"github.com/mpatrascu/order-desk/pkg/validate"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// UnderStockError reports insufficient stock for a requested quantity. It is
// a business outcome, not a system fault: callers may re-check stock and
// retry with a smaller quantity.
type UnderStockError struct {
	ProductID int64
	Requested int64
}

func (e *UnderStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %d (requested %d)", e.ProductID, e.Requested)
}

// Product is a catalog item with a finite stock. CurrentStock is mutated
// only through the guarded decrement, apart from direct catalog edits.
type Product struct {
	ID           int64
	ProductName  string
	Price        decimal.Decimal
	CurrentStock int64
}

// Validate checks the business rules for a product record.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ProductName) == "" {
		return &validate.Error{Entity: "product", Field: "productName", Reason: "must not be empty"}
	}
	if !p.Price.IsPositive() {
		return &validate.Error{Entity: "product", Field: "price", Reason: "must be positive"}
	}
	if p.CurrentStock < 0 {
		return &validate.Error{Entity: "product", Field: "currentStock", Reason: "must not be negative"}
	}
	return nil
}

// Repository defines persistence operations for products, including the
// stock ledger.
type Repository interface {
	FindAll(ctx context.Context, q dbmap.Querier) ([]Product, error)
	FindByID(ctx context.Context, q dbmap.Querier, id int64) (*Product, error)
	Insert(ctx context.Context, q dbmap.Querier, p *Product) error
	Update(ctx context.Context, q dbmap.Querier, p *Product, id int64) (int64, error)
	Delete(ctx context.Context, q dbmap.Querier, id int64)

	// CheckStock reports whether a product with the given identity exists
	// with at least quantity units in stock. Advisory only: it takes no
	// lock and must be followed by DecrementStock inside the same
	// transaction, never trusted on its own.
	CheckStock(ctx context.Context, q dbmap.Querier, productID, quantity int64) (bool, error)

	// DecrementStock subtracts quantity where sufficient stock still holds
	// at execution time. Zero affected rows yield an *UnderStockError; the
	// conditional update is the actual atomicity guarantee.
	DecrementStock(ctx context.Context, q dbmap.Querier, productID, quantity int64) error
}
