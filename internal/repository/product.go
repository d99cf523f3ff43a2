package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/internal/domain/product"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

const (
	checkStockSQL = `SELECT current_stock >= $2 FROM "product" WHERE id = $1`

	decrementStockSQL = `UPDATE "product" SET current_stock = current_stock - $2
		WHERE id = $1 AND current_stock >= $2`
)

var productSchema = dbmap.Schema[product.Product]{
	Table:  "product",
	Entity: "product",
	ID:     func(p *product.Product) *int64 { return &p.ID },
	Fields: []dbmap.Field[product.Product]{
		dbmap.Column("productName", func(p *product.Product) *string { return &p.ProductName }),
		dbmap.Column("price", func(p *product.Product) *decimal.Decimal { return &p.Price }),
		dbmap.Column("currentStock", func(p *product.Product) *int64 { return &p.CurrentStock }),
	},
}

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository: generic CRUD on the
// mapper plus the hand-written stock ledger statements.
type ProductRepository struct {
	mapper *dbmap.Mapper[product.Product]
}

// NewProductRepository returns a ProductRepository.
func NewProductRepository(lg *zap.Logger) *ProductRepository {
	return &ProductRepository{mapper: dbmap.NewMapper(productSchema, lg)}
}

func (r *ProductRepository) FindAll(ctx context.Context, q dbmap.Querier) ([]product.Product, error) {
	return r.mapper.FindAll(ctx, q)
}

func (r *ProductRepository) FindByID(ctx context.Context, q dbmap.Querier, id int64) (*product.Product, error) {
	return r.mapper.FindByID(ctx, q, id)
}

func (r *ProductRepository) Insert(ctx context.Context, q dbmap.Querier, p *product.Product) error {
	return r.mapper.Insert(ctx, q, p)
}

func (r *ProductRepository) Update(ctx context.Context, q dbmap.Querier, p *product.Product, id int64) (int64, error) {
	return r.mapper.Update(ctx, q, p, id)
}

func (r *ProductRepository) Delete(ctx context.Context, q dbmap.Querier, id int64) {
	r.mapper.Delete(ctx, q, id)
}

// CheckStock reports whether the product exists with at least quantity
// units in stock. A missing product reads as insufficient, not as an error.
func (r *ProductRepository) CheckStock(ctx context.Context, q dbmap.Querier, productID, quantity int64) (bool, error) {
	var enough bool
	err := q.QueryRow(ctx, checkStockSQL, productID, quantity).Scan(&enough)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, &dbmap.PersistenceError{Op: "check stock", Entity: "product", Err: err}
	}
	return enough, nil
}

// DecrementStock performs the guarded decrement: a compare-and-decrement
// executed by the storage engine as a single statement. Zero affected rows
// mean the precondition no longer held when the update ran.
func (r *ProductRepository) DecrementStock(ctx context.Context, q dbmap.Querier, productID, quantity int64) error {
	tag, err := q.Exec(ctx, decrementStockSQL, productID, quantity)
	if err != nil {
		return &dbmap.PersistenceError{Op: "decrement stock", Entity: "product", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &product.UnderStockError{ProductID: productID, Requested: quantity}
	}
	return nil
}
