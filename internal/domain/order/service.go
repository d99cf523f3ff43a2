package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/internal/domain/bill"
	"github.com/mpatrascu/order-desk/internal/domain/client"
	"github.com/mpatrascu/order-desk/internal/domain/product"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

// TxDB is the transactional database handle the placement engine drives.
// Implemented by *dbmap.DB. Begin/Rollback are not reentrant: one placement
// per transaction handle.
type TxDB interface {
	dbmap.Querier
	Begin(ctx context.Context) (dbmap.Tx, error)
	Rollback(ctx context.Context, tx dbmap.Tx)
}

// Service turns a requested order into either a fully committed
// (order, stock decrement, bill) triple or no observable change at all.
type Service struct {
	db       TxDB
	clients  client.Repository
	products product.Repository
	orders   Repository
	bills    bill.Repository

	tracer   trace.Tracer
	placed   metric.Int64Counter
	rejected metric.Int64Counter
}

// NewService creates the order placement engine with its repositories.
func NewService(
	db TxDB,
	clients client.Repository,
	products product.Repository,
	orders Repository,
	bills bill.Repository,
) *Service {
	meter := otel.Meter("order-desk/order")
	placed, _ := meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Orders committed successfully"))
	rejected, _ := meter.Int64Counter("orders_rejected_total",
		metric.WithDescription("Orders rejected or rolled back"))

	return &Service{
		db:       db,
		clients:  clients,
		products: products,
		orders:   orders,
		bills:    bills,
		tracer:   otel.Tracer("order-desk/order"),
		placed:   placed,
		rejected: rejected,
	}
}

// PlaceOrder runs the placement workflow: validation and an advisory stock
// check outside any transaction, then one atomic unit covering the guarded
// stock decrement, the order insert and the bill insert. On any failure
// after Begin the whole unit rolls back; the caller never observes an order
// without its bill, nor a decremented stock without its order.
func (s *Service) PlaceOrder(ctx context.Context, o *Order) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder", trace.WithAttributes(
		attribute.Int64("order.client_id", o.ClientID),
		attribute.Int64("order.product_id", o.ProductID),
		attribute.Int64("order.quantity", o.Quantity),
	))
	defer span.End()

	if err := o.Validate(); err != nil {
		s.reject(ctx, "validation")
		return nil, err
	}

	// Advisory fast path. No lock is taken here; the guarded decrement
	// below is the source of truth for stock sufficiency.
	enough, err := s.products.CheckStock(ctx, s.db, o.ProductID, o.Quantity)
	if err != nil {
		return nil, errors.Wrap(err, "check stock")
	}
	if !enough {
		s.reject(ctx, "under_stock")
		return nil, &product.UnderStockError{ProductID: o.ProductID, Requested: o.Quantity}
	}

	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// No-op once the transaction committed; guarantees release on every
	// other exit path.
	defer s.db.Rollback(ctx, tx)

	if err := s.placeInTx(ctx, tx, o); err != nil {
		var under *product.UnderStockError
		if errors.As(err, &under) {
			s.reject(ctx, "under_stock")
		} else {
			s.reject(ctx, "persistence")
			zctx.From(ctx).Error("order placement failed",
				zap.Int64("client_id", o.ClientID),
				zap.Int64("product_id", o.ProductID),
				zap.Int64("quantity", o.Quantity),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.reject(ctx, "persistence")
		zctx.From(ctx).Error("order placement commit failed",
			zap.Int64("client_id", o.ClientID),
			zap.Int64("product_id", o.ProductID),
			zap.Int64("quantity", o.Quantity),
			zap.Error(err),
		)
		return nil, &dbmap.PersistenceError{Op: "commit", Entity: "order", Err: err}
	}

	s.placed.Add(ctx, 1)
	return o, nil
}

// placeInTx performs steps 4-7 of the workflow on an open transaction:
// guarded decrement, order insert, bill generation, bill insert.
func (s *Service) placeInTx(ctx context.Context, tx dbmap.Tx, o *Order) error {
	// Decrement first. The storage engine's conditional update is what
	// keeps stock from ever going observably negative under contention.
	if err := s.products.DecrementStock(ctx, tx, o.ProductID, o.Quantity); err != nil {
		return err
	}

	if err := s.orders.Insert(ctx, tx, o); err != nil {
		return err
	}

	// The client and product are re-read inside the transaction. Either
	// may have disappeared since validation; that aborts the whole unit,
	// including the decrement that already succeeded.
	cl, err := s.clients.FindByID(ctx, tx, o.ClientID)
	if err != nil {
		return errors.Wrapf(err, "load client for bill of order %d", o.ID)
	}
	if cl == nil {
		return errors.Wrapf(client.ErrNotFound, "bill for order %d", o.ID)
	}

	pr, err := s.products.FindByID(ctx, tx, o.ProductID)
	if err != nil {
		return errors.Wrapf(err, "load product for bill of order %d", o.ID)
	}
	if pr == nil {
		return errors.Wrapf(product.ErrNotFound, "bill for order %d", o.ID)
	}

	b := bill.Generate(o.ID, o.Quantity, cl, pr, o.OrderDate)
	return s.bills.Insert(ctx, tx, &b)
}

// ListOrders returns the read-only listing projection for all orders.
func (s *Service) ListOrders(ctx context.Context) ([]OrderView, error) {
	return s.orders.ListViews(ctx, s.db)
}

// BillByOrderID returns the bill issued for the given order, or
// bill.ErrNotFound when the order has none.
func (s *Service) BillByOrderID(ctx context.Context, orderID int64) (*bill.Bill, error) {
	b, err := s.bills.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, bill.ErrNotFound
	}
	return b, nil
}

// ListBills returns every issued bill, oldest first.
func (s *Service) ListBills(ctx context.Context) ([]bill.Bill, error) {
	return s.bills.FindAll(ctx, s.db)
}

func (s *Service) reject(ctx context.Context, reason string) {
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
