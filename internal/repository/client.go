package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/internal/domain/client"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

var clientSchema = dbmap.Schema[client.Client]{
	Table:  "client",
	Entity: "client",
	ID:     func(c *client.Client) *int64 { return &c.ID },
	Fields: []dbmap.Field[client.Client]{
		dbmap.Column("name", func(c *client.Client) *string { return &c.Name }),
		dbmap.Column("email", func(c *client.Client) *string { return &c.Email }),
		dbmap.Column("address", func(c *client.Client) *string { return &c.Address }),
		dbmap.Column("age", func(c *client.Client) *int64 { return &c.Age }),
	},
}

var _ client.Repository = (*ClientRepository)(nil)

// ClientRepository implements client.Repository on the generic mapper.
type ClientRepository struct {
	mapper *dbmap.Mapper[client.Client]
}

// NewClientRepository returns a ClientRepository.
func NewClientRepository(lg *zap.Logger) *ClientRepository {
	return &ClientRepository{mapper: dbmap.NewMapper(clientSchema, lg)}
}

func (r *ClientRepository) FindAll(ctx context.Context, q dbmap.Querier) ([]client.Client, error) {
	return r.mapper.FindAll(ctx, q)
}

func (r *ClientRepository) FindByID(ctx context.Context, q dbmap.Querier, id int64) (*client.Client, error) {
	return r.mapper.FindByID(ctx, q, id)
}

func (r *ClientRepository) Insert(ctx context.Context, q dbmap.Querier, c *client.Client) error {
	return r.mapper.Insert(ctx, q, c)
}

func (r *ClientRepository) Update(ctx context.Context, q dbmap.Querier, c *client.Client, id int64) (int64, error) {
	return r.mapper.Update(ctx, q, c, id)
}

func (r *ClientRepository) Delete(ctx context.Context, q dbmap.Querier, id int64) {
	r.mapper.Delete(ctx, q, id)
}
