// Package dbmap provides generic single-table persistence driven by
// per-entity field-descriptor tables. One mapper implementation serves every
// record shape; the descriptor table replaces runtime type inspection.
package dbmap

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Field describes one persisted, non-identity member of a record type.
// Name is the in-memory camelCase field name; the column name is derived
// from it with ToSnake.
type Field[T any] struct {
	Name string
	// Value returns the column value written by Insert and Update.
	Value func(rec *T) any
	// Dest returns a scan destination plus an assign func that copies the
	// scanned value into rec. A NULL column must leave the member at its
	// zero value; members are never left uninitialized.
	Dest func() (dest any, assign func(rec *T))
}

// Column builds a Field for a scalar member addressed by ptr. Scanning goes
// through an intermediate pointer so a NULL column leaves the member at its
// zero value instead of failing the row.
func Column[T, V any](name string, ptr func(*T) *V) Field[T] {
	return Field[T]{
		Name:  name,
		Value: func(rec *T) any { return *ptr(rec) },
		Dest: func() (any, func(*T)) {
			var tmp *V
			return &tmp, func(rec *T) {
				if tmp != nil {
					*ptr(rec) = *tmp
				}
			}
		},
	}
}

// Schema binds a record type to its table: the table name, an accessor for
// the identity member, and the descriptor table for every other persisted
// member. The identity is excluded from all writable column lists.
type Schema[T any] struct {
	Table  string
	Entity string
	ID     func(*T) *int64
	Fields []Field[T]
}

// Mapper implements find/insert/update/delete for one table, with all SQL
// derived from the schema at construction time.
type Mapper[T any] struct {
	schema Schema[T]
	lg     *zap.Logger

	columns   []string
	selectAll string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewMapper prepares the statements for the schema's table. Column names
// are ToSnake translations of the field names; the identity column is id.
func NewMapper[T any](schema Schema[T], lg *zap.Logger) *Mapper[T] {
	cols := make([]string, len(schema.Fields))
	placeholders := make([]string, len(schema.Fields))
	sets := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = ToSnake(f.Name)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		sets[i] = fmt.Sprintf("%s = $%d", cols[i], i+1)
	}

	table := `"` + schema.Table + `"`
	m := &Mapper[T]{
		schema:    schema,
		lg:        lg,
		columns:   cols,
		selectAll: fmt.Sprintf(`SELECT id, %s FROM %s`, strings.Join(cols, ", "), table),
		insertSQL: fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
			table, strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`,
			table, strings.Join(sets, ", "), len(cols)+1),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table),
	}
	if len(cols) == 0 {
		m.selectAll = fmt.Sprintf(`SELECT id FROM %s`, table)
	}
	return m
}

// Columns returns the snake_case writable column names, in field order.
func (m *Mapper[T]) Columns() []string { return m.columns }

// FindAll returns every record in the table.
func (m *Mapper[T]) FindAll(ctx context.Context, q Querier) ([]T, error) {
	rows, err := q.Query(ctx, m.selectAll)
	if err != nil {
		return nil, &PersistenceError{Op: "find all", Entity: m.schema.Entity, Err: err}
	}
	recs, err := pgx.CollectRows(rows, m.scanRow)
	if err != nil {
		return nil, &PersistenceError{Op: "find all", Entity: m.schema.Entity, Err: err}
	}
	return recs, nil
}

// FindByID returns the record with the given identity, or nil when no row
// matches. Absence is not an error.
func (m *Mapper[T]) FindByID(ctx context.Context, q Querier, id int64) (*T, error) {
	return m.FindOneBy(ctx, q, "id", id)
}

// FindOneBy returns the first record whose field (camelCase name) equals
// value, or nil when no row matches.
func (m *Mapper[T]) FindOneBy(ctx context.Context, q Querier, field string, value any) (*T, error) {
	op := "find by " + field
	rows, err := q.Query(ctx, m.selectAll+` WHERE `+ToSnake(field)+` = $1`, value)
	if err != nil {
		return nil, &PersistenceError{Op: op, Entity: m.schema.Entity, Err: err}
	}
	rec, err := pgx.CollectOneRow(rows, m.scanRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: op, Entity: m.schema.Entity, Err: err}
	}
	return &rec, nil
}

// Insert persists rec and writes the store-generated identity back into it.
// A schema with no writable columns cannot be inserted.
func (m *Mapper[T]) Insert(ctx context.Context, q Querier, rec *T) error {
	if len(m.schema.Fields) == 0 {
		return &PersistenceError{Op: "insert", Entity: m.schema.Entity, Err: errors.New("no writable columns")}
	}
	if err := q.QueryRow(ctx, m.insertSQL, m.values(rec)...).Scan(m.schema.ID(rec)); err != nil {
		return &PersistenceError{Op: "insert", Entity: m.schema.Entity, Err: err}
	}
	return nil
}

// Update writes all non-identity columns of rec to the row with the given
// identity and reports how many rows were affected. Zero rows (a stale id)
// is not an error at this layer; the caller decides what it means.
func (m *Mapper[T]) Update(ctx context.Context, q Querier, rec *T, id int64) (int64, error) {
	if len(m.schema.Fields) == 0 {
		return 0, &PersistenceError{Op: "update", Entity: m.schema.Entity, Err: errors.New("no writable columns")}
	}
	args := append(m.values(rec), id)
	tag, err := q.Exec(ctx, m.updateSQL, args...)
	if err != nil {
		return 0, &PersistenceError{Op: "update", Entity: m.schema.Entity, Err: err}
	}
	return tag.RowsAffected(), nil
}

// Delete removes the row with the given identity. Deletion is idempotent
// cleanup: a failure is logged, not returned, and callers must not depend
// on it having succeeded.
func (m *Mapper[T]) Delete(ctx context.Context, q Querier, id int64) {
	if _, err := q.Exec(ctx, m.deleteSQL, id); err != nil {
		m.lg.Warn("delete failed",
			zap.String("entity", m.schema.Entity),
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
}

func (m *Mapper[T]) values(rec *T) []any {
	vals := make([]any, len(m.schema.Fields))
	for i, f := range m.schema.Fields {
		vals[i] = f.Value(rec)
	}
	return vals
}

func (m *Mapper[T]) scanRow(row pgx.CollectableRow) (T, error) {
	var rec T
	dests := make([]any, 0, len(m.schema.Fields)+1)
	assigns := make([]func(*T), 0, len(m.schema.Fields))

	dests = append(dests, m.schema.ID(&rec))
	for _, f := range m.schema.Fields {
		dest, assign := f.Dest()
		dests = append(dests, dest)
		assigns = append(assigns, assign)
	}

	if err := row.Scan(dests...); err != nil {
		return rec, err
	}
	for _, assign := range assigns {
		assign(&rec)
	}
	return rec, nil
}
