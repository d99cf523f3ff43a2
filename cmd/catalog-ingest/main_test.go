package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upsertRow struct {
	name  string
	price decimal.Decimal
	stock int64
}

type stubExec struct {
	rows []upsertRow
	err  error
}

func (s *stubExec) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if s.err != nil {
		return pgconn.CommandTag{}, s.err
	}
	s.rows = append(s.rows, upsertRow{
		name:  args[0].(string),
		price: args[1].(decimal.Decimal),
		stock: args[2].(int64),
	})
	return pgconn.CommandTag{}, nil
}

func writeFeed(t *testing.T, dir, name string, lines []string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	gz := pgzip.NewWriter(f)
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	return path
}

func TestIngest_UpsertsParsedRows(t *testing.T) {
	dir := t.TempDir()
	feed := writeFeed(t, dir, "feed.gz", []string{
		"Espresso Beans 1kg;9.99;5",
		"Ceramic Mug;4.50;120",
		"bad line",
		"French Press;24.00;18",
	})

	db := &stubExec{}
	require.NoError(t, ingest(context.Background(), db, []string{feed}))

	require.Len(t, db.rows, 3)
	assert.Equal(t, "Espresso Beans 1kg", db.rows[0].name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(db.rows[0].price))
	assert.Equal(t, int64(5), db.rows[0].stock)
}

func TestIngest_FirstOccurrenceWins(t *testing.T) {
	dir := t.TempDir()
	feed := writeFeed(t, dir, "feed.gz", []string{
		"Ceramic Mug;4.50;120",
		"Ceramic Mug;9.99;10",
		"Ceramic Mug;1.00;1",
	})

	db := &stubExec{}
	require.NoError(t, ingest(context.Background(), db, []string{feed}))

	require.Len(t, db.rows, 1)
	assert.True(t, decimal.RequireFromString("4.50").Equal(db.rows[0].price))
	assert.Equal(t, int64(120), db.rows[0].stock)
}

// A writer failure must cancel the producers even while they are blocked on
// a full channel, so ingest returns the error instead of hanging.
func TestIngest_WriterFailureUnblocksProducers(t *testing.T) {
	dir := t.TempDir()

	// Enough distinct lines to overflow the channel buffer many times over.
	lines := make([]string, itemsBuffer*3)
	for i := range lines {
		lines[i] = fmt.Sprintf("item%d;1.00;1", i)
	}
	feed := writeFeed(t, dir, "feed.gz", lines)

	db := &stubExec{err: errors.New("connection refused")}

	done := make(chan error, 1)
	go func() {
		done <- ingest(context.Background(), db, []string{feed})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write products")
		assert.Contains(t, err.Error(), "connection refused")
	case <-time.After(10 * time.Second):
		t.Fatal("ingest did not return after writer failure")
	}
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want feedItem
		ok   bool
	}{
		{"valid", "Mug;4.50;10", feedItem{name: "Mug", price: decimal.RequireFromString("4.50"), stock: 10}, true},
		{"padded", "  Mug ; 4.50 ; 10 ", feedItem{name: "Mug", price: decimal.RequireFromString("4.50"), stock: 10}, true},
		{"empty", "", feedItem{}, false},
		{"missing field", "Mug;4.50", feedItem{}, false},
		{"extra field", "Mug;4.50;10;x", feedItem{}, false},
		{"blank name", " ;4.50;10", feedItem{}, false},
		{"zero price", "Mug;0;10", feedItem{}, false},
		{"negative price", "Mug;-4.50;10", feedItem{}, false},
		{"bad price", "Mug;cheap;10", feedItem{}, false},
		{"negative stock", "Mug;4.50;-1", feedItem{}, false},
		{"bad stock", "Mug;4.50;many", feedItem{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseLine(tc.in)
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.Equal(t, tc.want.name, got.name)
			assert.True(t, tc.want.price.Equal(got.price))
			assert.Equal(t, tc.want.stock, got.stock)
		})
	}
}
