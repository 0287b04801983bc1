package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anakievah/pdb/internal/store"
	"github.com/anakievah/pdb/internal/table"
)

// memRows is an in-memory RowLoader that counts loads per table.
type memRows struct {
	tables map[string][]table.Record
	loads  map[string]int
	err    error
}

func newMemRows() *memRows {
	return &memRows{tables: map[string][]table.Record{}, loads: map[string]int{}}
}

func (m *memRows) LoadRows(name string) ([]table.Record, error) {
	m.loads[name]++
	if m.err != nil {
		return nil, m.err
	}
	return table.CloneRecords(m.tables[name]), nil
}

func (m *memRows) save(name string, rows []table.Record) {
	m.tables[name] = table.CloneRecords(rows)
}

func usersRegistry(t *testing.T) table.Registry {
	t.Helper()
	reg, _, err := table.CreateTable(table.Registry{}, "users", []string{"name:str", "age:int", "admin:bool"})
	require.NoError(t, err)
	return reg
}

func insert(t *testing.T, e *Engine, m *memRows, reg table.Registry, name string, raw ...string) table.Record {
	t.Helper()
	res, err := e.Insert(reg, name, raw)
	require.NoError(t, err)
	m.save(name, res.Rows)
	e.Invalidate(name)
	return res.Record
}

func TestCreateTable_SchemaIsIDPrefixed(t *testing.T) {
	e := New(newMemRows(), nil, nil)

	reg, schema, err := e.CreateTable(table.Registry{}, "users", []string{"name:str", "age:int"})
	require.NoError(t, err)

	want := table.Schema{
		{Name: "ID", Type: table.TypeInt},
		{Name: "name", Type: table.TypeStr},
		{Name: "age", Type: table.TypeInt},
	}
	assert.Equal(t, want, schema)

	got, err := table.GetSchema(reg, "users")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"users"}, e.ListTables(reg))
}

func TestInsert_AssignsSequentialIDs(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	for i := 1; i <= 5; i++ {
		rec := insert(t, e, m, reg, "users", "user", "20", "false")
		assert.Equal(t, int64(i), rec["ID"])
	}

	rows := m.tables["users"]
	require.Len(t, rows, 5)
	for i, r := range rows {
		assert.Equal(t, int64(i+1), r["ID"], "row %d", i)
	}
}

func TestInsert_CoercesValues(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	rec := insert(t, e, m, reg, "users", "Alice", "30", "TRUE")
	assert.Equal(t, table.Record{"ID": int64(1), "name": "Alice", "age": int64(30), "admin": true}, rec)
}

func TestInsert_IDAfterDeletingMax(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	for range 3 {
		insert(t, e, m, reg, "users", "u", "1", "false")
	}

	// Delete ID 3 (the max): next ID is new max + 1 = 3
	res, err := e.Delete(reg, "users", table.Predicate{"ID": int64(3)})
	require.NoError(t, err)
	m.save("users", res.Rows)
	rec := insert(t, e, m, reg, "users", "u", "1", "false")
	assert.Equal(t, int64(3), rec["ID"])

	// Delete ID 1 (below the max): it is never reused
	res, err = e.Delete(reg, "users", table.Predicate{"ID": int64(1)})
	require.NoError(t, err)
	m.save("users", res.Rows)
	rec = insert(t, e, m, reg, "users", "u", "1", "false")
	assert.Equal(t, int64(4), rec["ID"])
}

func TestInsert_Errors(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	tests := []struct {
		name    string
		table   string
		raw     []string
		wantErr error
	}{
		{"too few values", "users", []string{"Alice", "30"}, table.ErrSchemaMismatch},
		{"too many values", "users", []string{"Alice", "30", "true", "x"}, table.ErrSchemaMismatch},
		{"bad int", "users", []string{"Alice", "thirty", "true"}, table.ErrTypeMismatch},
		{"bad bool", "users", []string{"Alice", "30", "42"}, table.ErrTypeMismatch},
		{"unknown table", "ghosts", []string{"x"}, table.ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Insert(reg, tt.table, tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Validation failures never reach storage
	assert.Zero(t, m.loads["users"])
}

func TestSelect(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	insert(t, e, m, reg, "users", "Alice", "30", "true")
	insert(t, e, m, reg, "users", "Bob", "25", "false")
	insert(t, e, m, reg, "users", "Carol", "30", "false")

	all, err := e.Select(reg, "users", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := e.Select(reg, "users", table.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, all, empty)

	thirty, err := e.Select(reg, "users", table.Predicate{"age": int64(30)})
	require.NoError(t, err)
	require.Len(t, thirty, 2)
	assert.Equal(t, "Alice", thirty[0]["name"])
	assert.Equal(t, "Carol", thirty[1]["name"])

	both, err := e.Select(reg, "users", table.Predicate{"age": int64(30), "admin": false})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Carol", both[0]["name"])

	none, err := e.Select(reg, "users", table.Predicate{"name": "Zed"})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	// Type must match exactly
	str, err := e.Select(reg, "users", table.Predicate{"age": "30"})
	require.NoError(t, err)
	assert.Empty(t, str)
}

func TestSelect_Errors(t *testing.T) {
	e := New(newMemRows(), nil, nil)
	reg := usersRegistry(t)

	_, err := e.Select(reg, "ghosts", nil)
	assert.ErrorIs(t, err, table.ErrTableNotFound)

	_, err = e.Select(reg, "users", table.Predicate{"email": "x"})
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestSelect_CacheHit(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "true")
	insert(t, e, m, reg, "users", "Bob", "25", "false")

	where := table.Predicate{"name": "Alice"}
	before := m.loads["users"]

	first, err := e.Select(reg, "users", where)
	require.NoError(t, err)
	second, err := e.Select(reg, "users", table.Predicate{"name": "Alice"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before+1, m.loads["users"], "second select should not touch storage")

	// Cached result equals a fresh uncached computation
	fresh := New(m, nil, nil)
	uncached, err := fresh.Select(reg, "users", where)
	require.NoError(t, err)
	assert.Equal(t, uncached, second)

	hits, misses := e.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestSelect_NilPredicateBypassesCache(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	_, err := e.Select(reg, "users", nil)
	require.NoError(t, err)
	_, err = e.Select(reg, "users", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, m.loads["users"])
	assert.Zero(t, e.Cache().Len())
}

func TestSelect_CallerCannotCorruptCache(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "true")

	where := table.Predicate{"name": "Alice"}
	rows, err := e.Select(reg, "users", where)
	require.NoError(t, err)
	rows[0]["age"] = int64(99)

	again, err := e.Select(reg, "users", where)
	require.NoError(t, err)
	assert.Equal(t, int64(30), again[0]["age"])
}

func TestSelect_InvalidateAfterMutation(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "true")

	where := table.Predicate{"name": "Alice"}
	_, err := e.Select(reg, "users", where)
	require.NoError(t, err)

	res, err := e.Update(reg, "users", map[string]any{"age": int64(31)}, where)
	require.NoError(t, err)
	m.save("users", res.Rows)
	e.Invalidate("users")

	rows, err := e.Select(reg, "users", where)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(31), rows[0]["age"])
}

func TestSelect_LoadErrorNotCached(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)

	m.err = store.ErrCorruptData
	_, err := e.Select(reg, "users", table.Predicate{"name": "Alice"})
	assert.ErrorIs(t, err, store.ErrCorruptData)
	assert.Zero(t, e.Cache().Len())

	m.err = nil
	rows, err := e.Select(reg, "users", table.Predicate{"name": "Alice"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdate(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "false")
	insert(t, e, m, reg, "users", "Bob", "25", "false")

	res, err := e.Update(reg, "users", map[string]any{"age": "31", "admin": true}, table.Predicate{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(31), res.Rows[0]["age"], "string input coerced to int")
	assert.Equal(t, true, res.Rows[0]["admin"])
	assert.Equal(t, int64(25), res.Rows[1]["age"])

	// Integer set on a str column is stored as text
	res, err = e.Update(reg, "users", map[string]any{"name": int64(42)}, table.Predicate{"name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "42", res.Rows[1]["name"])

	// No match: nothing changes
	res, err = e.Update(reg, "users", map[string]any{"age": 1}, table.Predicate{"name": "Zed"})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
}

// sharedRows hands out its backing records without copying.
type sharedRows struct {
	rows []table.Record
}

func (s *sharedRows) LoadRows(string) ([]table.Record, error) {
	return s.rows, nil
}

func TestUpdate_LeavesLoadedRowsUntouched(t *testing.T) {
	loader := &sharedRows{rows: []table.Record{
		{"ID": int64(1), "name": "Alice", "age": int64(30), "admin": false},
		{"ID": int64(2), "name": "Bob", "age": int64(25), "admin": false},
	}}
	e := New(loader, nil, nil)

	res, err := e.Update(usersRegistry(t), "users", map[string]any{"age": int64(31)}, table.Predicate{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, int64(31), res.Rows[0]["age"])

	assert.Equal(t, int64(30), loader.rows[0]["age"], "loader rows must not change before persisting")
}

func TestUpdate_Errors(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "false")

	tests := []struct {
		name    string
		table   string
		set     map[string]any
		where   table.Predicate
		wantErr error
	}{
		{"unknown set column", "users", map[string]any{"email": "x"}, table.Predicate{"name": "Alice"}, table.ErrUnknownColumn},
		{"unknown set column without matches", "users", map[string]any{"email": "x"}, table.Predicate{"name": "Zed"}, table.ErrUnknownColumn},
		{"unknown where column", "users", map[string]any{"age": 1}, table.Predicate{"email": "x"}, table.ErrUnknownColumn},
		{"bad value", "users", map[string]any{"age": "old"}, table.Predicate{"name": "Alice"}, table.ErrTypeMismatch},
		{"bool column from int", "users", map[string]any{"admin": int64(1)}, table.Predicate{"name": "Alice"}, table.ErrTypeMismatch},
		{"ID column", "users", map[string]any{"ID": int64(9)}, table.Predicate{"name": "Alice"}, table.ErrSchemaMismatch},
		{"unknown table", "ghosts", map[string]any{"age": 1}, table.Predicate{}, table.ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Update(reg, tt.table, tt.set, tt.where)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDelete(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "false")
	insert(t, e, m, reg, "users", "Bob", "25", "false")
	insert(t, e, m, reg, "users", "Bob", "40", "true")

	res, err := e.Delete(reg, "users", table.Predicate{"name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Alice", res.Rows[0]["name"])

	_, err = e.Delete(reg, "users", table.Predicate{"email": "x"})
	assert.ErrorIs(t, err, table.ErrUnknownColumn)

	_, err = e.Delete(reg, "ghosts", table.Predicate{})
	assert.ErrorIs(t, err, table.ErrTableNotFound)
}

func TestDropTable_InvalidatesCache(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "false")

	_, err := e.Select(reg, "users", table.Predicate{"name": "Alice"})
	require.NoError(t, err)
	require.Equal(t, 1, e.Cache().Len())

	updated, err := e.DropTable(reg, "users")
	require.NoError(t, err)
	assert.NotContains(t, updated, "users")
	assert.Zero(t, e.Cache().Len())

	_, err = e.DropTable(updated, "users")
	assert.ErrorIs(t, err, table.ErrTableNotFound)
}

func TestInfo(t *testing.T) {
	m := newMemRows()
	e := New(m, nil, nil)
	reg := usersRegistry(t)
	insert(t, e, m, reg, "users", "Alice", "30", "false")
	insert(t, e, m, reg, "users", "Bob", "25", "false")

	info, err := e.Info(reg, "users")
	require.NoError(t, err)
	assert.Equal(t, "users", info.Name)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, "ID:int, name:str, age:int, admin:bool", info.Schema.String())

	_, err = e.Info(reg, "ghosts")
	assert.True(t, errors.Is(err, table.ErrTableNotFound))
}

// TestUsersScenario walks through the documented create/insert/update/delete
// sequence against the real JSON store.
func TestUsersScenario(t *testing.T) {
	s := store.New(t.TempDir(), "", "")
	e := New(s, nil, nil)

	reg, err := s.LoadRegistry()
	require.NoError(t, err)

	reg, schema, err := e.CreateTable(reg, "users", []string{"name:str", "age:int"})
	require.NoError(t, err)
	assert.Equal(t, "ID:int, name:str, age:int", schema.String())
	require.NoError(t, s.SaveRegistry(reg))

	reg, err = s.LoadRegistry()
	require.NoError(t, err)

	ins, err := e.Insert(reg, "users", []string{"Alice", "30"})
	require.NoError(t, err)
	assert.Equal(t, table.Record{"ID": int64(1), "name": "Alice", "age": int64(30)}, ins.Record)
	require.NoError(t, s.SaveRows("users", ins.Rows))
	e.Invalidate("users")

	ins, err = e.Insert(reg, "users", []string{"Bob", "25"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ins.Record["ID"])
	require.NoError(t, s.SaveRows("users", ins.Rows))
	e.Invalidate("users")

	upd, err := e.Update(reg, "users", map[string]any{"age": "31"}, table.Predicate{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, upd.Count)
	require.NoError(t, s.SaveRows("users", upd.Rows))
	e.Invalidate("users")

	alice, err := e.Select(reg, "users", table.Predicate{"name": "Alice"})
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, int64(31), alice[0]["age"])

	del, err := e.Delete(reg, "users", table.Predicate{"name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, del.Count)
	require.NoError(t, s.SaveRows("users", del.Rows))
	e.Invalidate("users")

	rows, err := e.Select(reg, "users", nil)
	require.NoError(t, err)
	assert.Equal(t, []table.Record{{"ID": int64(1), "name": "Alice", "age": int64(31)}}, rows)

	// Wrong arity fails and the persisted document is unchanged
	before, err := s.LoadRows("users")
	require.NoError(t, err)
	_, err = e.Insert(reg, "users", []string{"Carol"})
	require.ErrorIs(t, err, table.ErrSchemaMismatch)
	after, err := s.LoadRows("users")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
