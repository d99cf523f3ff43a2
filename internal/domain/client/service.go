package client

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

// Service provides validated CRUD over the client catalog.
type Service struct {
	db   dbmap.Querier
	repo Repository
}

// NewService creates a client Service over the given database handle.
func NewService(db dbmap.Querier, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Add validates and persists a new client, assigning its identity.
func (s *Service) Add(ctx context.Context, c *Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		zctx.From(ctx).Error("add client failed", zap.Error(err))
		return err
	}
	return nil
}

// Update validates c and overwrites the client with the given identity.
// Returns ErrNotFound when no such client exists.
func (s *Service) Update(ctx context.Context, c *Client, id int64) error {
	if err := c.Validate(); err != nil {
		return err
	}
	n, err := s.repo.Update(ctx, s.db, c, id)
	if err != nil {
		zctx.From(ctx).Error("update client failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	c.ID = id
	return nil
}

// Delete removes the client with the given identity. Best-effort cleanup.
func (s *Service) Delete(ctx context.Context, id int64) {
	s.repo.Delete(ctx, s.db, id)
}

// Get returns the client with the given identity or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	c, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns all registered clients.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.FindAll(ctx, s.db)
}
