package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mpatrascu/order-desk/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	itemsBuffer   = 1024
	progressEvery = 100_000
)

const upsertProductSQL = `INSERT INTO "product" (product_name, price, current_stock)
VALUES ($1, $2, $3)
ON CONFLICT (product_name)
DO UPDATE SET price = EXCLUDED.price, current_stock = EXCLUDED.current_stock`

// feedItem is one parsed line of a supplier feed.
type feedItem struct {
	name  string
	price decimal.Decimal
	stock int64
}

// execer is the single statement surface the writer needs. Satisfied by
// *pgxpool.Pool.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no feed files given: pass one or more .gz feed files as arguments")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("streaming feed files", slog.Int("files", len(files)))

	return ingest(ctx, pool, files)
}

// ingest streams all feed files into a single writer. Producers and writer
// share one errgroup context, so a failure on either side cancels the other:
// a writer error unblocks producers waiting on a full channel, and a
// producer error stops the writer once the channel drains and closes.
func ingest(ctx context.Context, db execer, files []string) error {
	items := make(chan feedItem, itemsBuffer)

	g, gctx := errgroup.WithContext(ctx)

	producers, pctx := errgroup.WithContext(gctx)
	for _, f := range files {
		producers.Go(streamFeed(pctx, f, items))
	}

	// items closes only after every producer stopped sending.
	g.Go(func() error {
		defer close(items)
		if err := producers.Wait(); err != nil {
			return errors.Wrap(err, "stream feeds")
		}
		return nil
	})

	// Single writer: keeps the bloom dedupe single-threaded and upserts in
	// arrival order. The first occurrence of a name wins within one run.
	g.Go(func() error {
		if err := writeProducts(gctx, db, items); err != nil {
			return errors.Wrap(err, "write products")
		}
		return nil
	})

	return g.Wait()
}

// streamFeed reads one gzip-compressed feed file and sends parsed lines to
// items. Each line is "name;price;stock". Malformed lines are skipped with a
// warning rather than failing the whole run.
func streamFeed(ctx context.Context, path string, items chan<- feedItem) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count, skipped uint64

		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item, ok := parseLine(scanner.Text())
			if !ok {
				skipped++
				if skipped <= 10 {
					slog.Warn("skipping malformed line",
						slog.String("file", path),
						slog.String("line", scanner.Text()),
					)
				}
				continue
			}

			select {
			case items <- item:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("feed progress", slog.String("file", path), slog.Uint64("lines", count))
			}
		}

		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("feed complete",
			slog.String("file", path),
			slog.Uint64("lines", count),
			slog.Uint64("skipped", skipped),
		)

		return nil
	}
}

// parseLine parses one "name;price;stock" feed line.
func parseLine(line string) (feedItem, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return feedItem{}, false
	}

	parts := strings.Split(line, ";")
	if len(parts) != 3 {
		return feedItem{}, false
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return feedItem{}, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil || !price.IsPositive() {
		return feedItem{}, false
	}

	stock, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil || stock < 0 {
		return feedItem{}, false
	}

	return feedItem{name: name, price: price, stock: stock}, true
}

// writeProducts drains items and upserts each product once. The bloom filter
// skips every repeat of a name within this run, so the first occurrence
// wins; a false positive only drops a row that would have been skipped as a
// duplicate anyway.
func writeProducts(ctx context.Context, db execer, items <-chan feedItem) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var written uint64

	for item := range items {
		if seen.TestAndAddString(item.name) {
			continue
		}

		if _, err := db.Exec(ctx, upsertProductSQL, item.name, item.price, item.stock); err != nil {
			return errors.Wrapf(err, "upsert product %q", item.name)
		}

		written++
		if written%1000 == 0 {
			slog.Info("write progress", slog.Uint64("written", written))
		}
	}

	slog.Info("write complete", slog.Uint64("written", written))
	return nil
}
