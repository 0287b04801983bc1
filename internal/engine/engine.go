// Package engine implements the record operations over a schema registry and
// per-table row collections.
//
// The engine reads rows through a RowLoader but never writes: operations that
// change state return the new registry or row sequence, and the caller
// persists it.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/anakievah/pdb/internal/table"
)

// RowLoader loads the current rows of a table.
type RowLoader interface {
	LoadRows(name string) ([]table.Record, error)
}

// Engine runs record operations against a caller-supplied registry.
type Engine struct {
	rows   RowLoader
	cache  *Cache
	logger *slog.Logger
}

// InsertResult is the outcome of Insert.
type InsertResult struct {
	Rows   []table.Record // full row sequence to persist
	Record table.Record   // the inserted record
}

// MutationResult is the outcome of Update and Delete.
type MutationResult struct {
	Rows  []table.Record // full row sequence to persist
	Count int            // rows updated or removed
}

// TableInfo summarises one table.
type TableInfo struct {
	Name   string       `json:"name"`
	Schema table.Schema `json:"columns"`
	Rows   int          `json:"rows"`
}

// New creates an engine. A nil cache gets a fresh one; a nil logger discards.
func New(rows RowLoader, cache *Cache, logger *slog.Logger) *Engine {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{rows: rows, cache: cache, logger: logger}
}

// Cache returns the engine's query cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Invalidate drops cached reads of a table. Call it after persisting any
// change to the table's rows.
func (e *Engine) Invalidate(name string) {
	e.cache.Invalidate(name)
}

// ListTables returns the table names in sorted order.
func (e *Engine) ListTables(reg table.Registry) []string {
	return table.ListTables(reg)
}

// CreateTable adds a table and returns the new registry and the created schema.
func (e *Engine) CreateTable(reg table.Registry, name string, specs []string) (table.Registry, table.Schema, error) {
	return table.CreateTable(reg, name, specs)
}

// DropTable removes a table from the registry. The caller deletes its row document.
func (e *Engine) DropTable(reg table.Registry, name string) (table.Registry, error) {
	updated, err := table.DropTable(reg, name)
	if err != nil {
		return nil, err
	}
	e.cache.Invalidate(name)
	return updated, nil
}

// Insert coerces raw values to the table's column types and appends a record
// with the next free ID (max existing ID + 1, or 1 for an empty table).
func (e *Engine) Insert(reg table.Registry, name string, raw []string) (*InsertResult, error) {
	schema, err := table.GetSchema(reg, name)
	if err != nil {
		return nil, err
	}

	cols := schema.DataColumns()
	if len(raw) != len(cols) {
		return nil, fmt.Errorf("%w: table %q expects %d values, got %d", table.ErrSchemaMismatch, name, len(cols), len(raw))
	}

	// Coerce before loading so bad input never touches storage
	rec := table.Record{}
	for i, col := range cols {
		v, err := table.Coerce(raw[i], col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		rec[col.Name] = v
	}

	rows, err := e.rows.LoadRows(name)
	if err != nil {
		return nil, err
	}

	rec[table.IDColumn] = nextID(rows)

	out := make([]table.Record, 0, len(rows)+1)
	out = append(out, rows...)
	out = append(out, rec)

	return &InsertResult{Rows: out, Record: rec}, nil
}

// nextID returns max(existing IDs) + 1, or 1 when there are none.
func nextID(rows []table.Record) int64 {
	var maxID int64
	for _, r := range rows {
		if id, ok := r.ID(); ok && id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Select returns the rows of a table matching where. A nil predicate returns
// every row straight from storage; otherwise the result is served from the
// query cache.
func (e *Engine) Select(reg table.Registry, name string, where table.Predicate) ([]table.Record, error) {
	schema, err := table.GetSchema(reg, name)
	if err != nil {
		return nil, err
	}

	if where == nil {
		return e.rows.LoadRows(name)
	}

	if err := checkColumns(schema, name, where); err != nil {
		return nil, err
	}

	return e.cache.Get(name, where, func() ([]table.Record, error) {
		e.logger.Debug("cache miss", "table", name, "where", where.String())
		rows, err := e.rows.LoadRows(name)
		if err != nil {
			return nil, err
		}
		return filter(rows, where, true), nil
	})
}

// Update overwrites the set columns of every row matching where. Values are
// rendered to text and coerced to the column type, so 31 and "31" both store
// an integer in an int column.
func (e *Engine) Update(reg table.Registry, name string, set map[string]any, where table.Predicate) (*MutationResult, error) {
	schema, err := table.GetSchema(reg, name)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(set))
	for col, v := range set {
		c, ok := schema.Lookup(col)
		if !ok {
			return nil, fmt.Errorf("%w: %q in table %q", table.ErrUnknownColumn, col, name)
		}
		if c.Name == table.IDColumn {
			return nil, fmt.Errorf("%w: column %s is assigned automatically and cannot be set", table.ErrSchemaMismatch, table.IDColumn)
		}
		coerced, err := table.Coerce(table.Format(v), c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		values[col] = coerced
	}

	if err := checkColumns(schema, name, where); err != nil {
		return nil, err
	}

	rows, err := e.rows.LoadRows(name)
	if err != nil {
		return nil, err
	}

	// Matched records are copied so the loader's rows stay untouched until
	// the caller persists.
	out := make([]table.Record, len(rows))
	count := 0
	for i, r := range rows {
		if !where.Matches(r) {
			out[i] = r
			continue
		}
		updated := r.Clone()
		for col, v := range values {
			updated[col] = v
		}
		out[i] = updated
		count++
	}

	return &MutationResult{Rows: out, Count: count}, nil
}

// Delete removes every row matching where.
func (e *Engine) Delete(reg table.Registry, name string, where table.Predicate) (*MutationResult, error) {
	schema, err := table.GetSchema(reg, name)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(schema, name, where); err != nil {
		return nil, err
	}

	rows, err := e.rows.LoadRows(name)
	if err != nil {
		return nil, err
	}

	kept := filter(rows, where, false)
	return &MutationResult{Rows: kept, Count: len(rows) - len(kept)}, nil
}

// Info returns a table's schema and row count.
func (e *Engine) Info(reg table.Registry, name string) (*TableInfo, error) {
	schema, err := table.GetSchema(reg, name)
	if err != nil {
		return nil, err
	}

	rows, err := e.rows.LoadRows(name)
	if err != nil {
		return nil, err
	}

	return &TableInfo{Name: name, Schema: schema, Rows: len(rows)}, nil
}

// checkColumns rejects predicates that reference columns outside the schema.
func checkColumns(schema table.Schema, name string, where table.Predicate) error {
	for _, col := range where.Columns() {
		if _, ok := schema.Lookup(col); !ok {
			return fmt.Errorf("%w: %q in table %q", table.ErrUnknownColumn, col, name)
		}
	}
	return nil
}

// filter returns the rows whose match result equals keep.
func filter(rows []table.Record, where table.Predicate, keep bool) []table.Record {
	out := make([]table.Record, 0, len(rows))
	for _, r := range rows {
		if where.Matches(r) == keep {
			out = append(out, r)
		}
	}
	return out
}
