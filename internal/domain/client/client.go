package client

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/mpatrascu/order-desk/pkg/dbmap"
	"github.com/mpatrascu/order-desk/pkg/validate"
)

// ErrNotFound is returned when a requested client does not exist.
var ErrNotFound = errors.New("client not found")

// Client is a registered customer able to place orders.
type Client struct {
	ID      int64
	Name    string
	Email   string
	Address string
	Age     int64
}

// Validate checks the business rules for a client record.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &validate.Error{Entity: "client", Field: "name", Reason: "must not be empty"}
	}
	if !strings.Contains(c.Email, "@") {
		return &validate.Error{Entity: "client", Field: "email", Reason: "must contain @"}
	}
	if c.Age <= 0 || c.Age > 100 {
		return &validate.Error{Entity: "client", Field: "age", Reason: "must be between 1 and 100"}
	}
	return nil
}

// Repository defines persistence operations for clients. Every operation
// takes an explicit dbmap.Querier so it can join a caller-owned transaction.
type Repository interface {
	FindAll(ctx context.Context, q dbmap.Querier) ([]Client, error)
	FindByID(ctx context.Context, q dbmap.Querier, id int64) (*Client, error)
	Insert(ctx context.Context, q dbmap.Querier, c *Client) error
	Update(ctx context.Context, q dbmap.Querier, c *Client, id int64) (int64, error)
	Delete(ctx context.Context, q dbmap.Querier, id int64)
}
