package product

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

// Service provides validated CRUD over the product catalog plus the
// advisory stock check.
type Service struct {
	db   dbmap.Querier
	repo Repository
}

// NewService creates a product Service over the given database handle.
func NewService(db dbmap.Querier, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Add validates and persists a new product, assigning its identity.
func (s *Service) Add(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		zctx.From(ctx).Error("add product failed", zap.Error(err))
		return err
	}
	return nil
}

// Update validates p and overwrites the product with the given identity.
// Returns ErrNotFound when no such product exists.
func (s *Service) Update(ctx context.Context, p *Product, id int64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	n, err := s.repo.Update(ctx, s.db, p, id)
	if err != nil {
		zctx.From(ctx).Error("update product failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	p.ID = id
	return nil
}

// Delete removes the product with the given identity. Best-effort cleanup.
func (s *Service) Delete(ctx context.Context, id int64) {
	s.repo.Delete(ctx, s.db, id)
}

// Get returns the product with the given identity or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.FindAll(ctx, s.db)
}

// StockSufficient is the advisory stock check, suitable for user feedback.
// It establishes no lock; order placement relies on the guarded decrement.
func (s *Service) StockSufficient(ctx context.Context, productID, quantity int64) (bool, error) {
	return s.repo.CheckStock(ctx, s.db, productID, quantity)
}
