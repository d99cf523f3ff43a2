// Command seed-db applies the schema and loads clients and products from a
// JSON seed file. Records go through the same validated services the
// application uses, so a bad seed entry fails loudly.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mpatrascu/order-desk/internal/domain/client"
	"github.com/mpatrascu/order-desk/internal/domain/product"
	"github.com/mpatrascu/order-desk/internal/repository"
	"github.com/mpatrascu/order-desk/pkg/dbmap"
)

type seedFile struct {
	Clients  []clientJSON  `json:"clients"`
	Products []productJSON `json:"products"`
}

type clientJSON struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Age     int64  `json:"age"`
}

type productJSON struct {
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int64           `json:"currentStock"`
}

func main() {
	lg := zap.Must(zap.NewProduction())
	defer func() { _ = lg.Sync() }()

	cfg, err := LoadConfig()
	if err != nil {
		lg.Fatal("configuration", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, lg, cfg); err != nil {
		lg.Fatal("seed failed", zap.Error(err))
	}

	lg.Info("seed completed successfully")
}

func run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	lg.Info("connecting to database")

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	db := dbmap.NewDB(pool, lg)
	clients := client.NewService(db, repository.NewClientRepository(lg))
	products := product.NewService(db, repository.NewProductRepository(lg))

	lg.Info("reading seed file", zap.String("path", cfg.SeedFile))

	data, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	lg.Info("seeding clients", zap.Int("count", len(seed.Clients)))

	for _, c := range seed.Clients {
		rec := client.Client{Name: c.Name, Email: c.Email, Address: c.Address, Age: c.Age}
		if err := clients.Add(ctx, &rec); err != nil {
			return errors.Wrapf(err, "seed client %q", c.Name)
		}
		lg.Info("added client", zap.Int64("id", rec.ID), zap.String("name", rec.Name))
	}

	lg.Info("seeding products", zap.Int("count", len(seed.Products)))

	for _, p := range seed.Products {
		rec := product.Product{ProductName: p.ProductName, Price: p.Price, CurrentStock: p.CurrentStock}
		if err := products.Add(ctx, &rec); err != nil {
			return errors.Wrapf(err, "seed product %q", p.ProductName)
		}
		lg.Info("added product",
			zap.Int64("id", rec.ID),
			zap.String("name", rec.ProductName),
			zap.Int64("stock", rec.CurrentStock),
		)
	}

	return nil
}
