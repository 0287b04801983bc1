package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/anakievah/pdb/internal/table"
	_ "modernc.org/sqlite"
)

// ExportInfo describes the state recorded in an exported SQLite database.
type ExportInfo struct {
	Table      string    `json:"table"`
	Path       string    `json:"path"`
	Rows       int       `json:"rows"`
	SourceHash string    `json:"source_hash"`
	ExportedAt time.Time `json:"exported_at,omitempty"`
	Skipped    bool      `json:"skipped,omitempty"`
}

// openExportDB opens a SQLite database for export.
func openExportDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// GenerateDDL generates a CREATE TABLE statement for a schema, preserving column order.
func GenerateDDL(name string, schema table.Schema) string {
	cols := make([]string, 0, len(schema))
	for _, c := range schema {
		col := fmt.Sprintf("%s %s", quoteIdent(c.Name), sqliteType(c.Type))
		if c.Name == table.IDColumn {
			col += " PRIMARY KEY"
		}
		cols = append(cols, col)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quoteIdent(name),
		strings.Join(cols, ",\n  "))
}

// GenerateMetaTableDDL generates the _meta table DDL.
func GenerateMetaTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`
}

// sqliteType maps a column type to a SQLite type.
func sqliteType(t table.ColumnType) string {
	switch t {
	case table.TypeInt, table.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ExportSQLite writes a table's rows into a SQLite database at dbPath,
// replacing any rows exported earlier. The source document hash and export
// time are recorded in the _meta table.
func ExportSQLite(ctx context.Context, dbPath, name string, schema table.Schema, rows []table.Record, sourceHash string) (*ExportInfo, error) {
	db, err := openExportDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Schema may have changed since a previous export under the same name
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return nil, fmt.Errorf("dropping previous table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, GenerateDDL(name, schema)); err != nil {
		return nil, fmt.Errorf("creating table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, GenerateMetaTableDDL()); err != nil {
		return nil, fmt.Errorf("creating meta table: %w", err)
	}

	cols := make([]string, len(schema))
	placeholders := make([]string, len(schema))
	for i, c := range schema {
		cols[i] = quoteIdent(c.Name)
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range rows {
		values := make([]any, len(schema))
		for j, c := range schema {
			values[j] = convertValueForSQLite(rec[c.Name])
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return nil, fmt.Errorf("inserting record %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := setMeta(ctx, tx, "source_table", name); err != nil {
		return nil, err
	}
	if err := setMeta(ctx, tx, "source_hash", sourceHash); err != nil {
		return nil, err
	}
	if err := setMeta(ctx, tx, "exported_at", now.Format(time.RFC3339)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing export: %w", err)
	}

	return &ExportInfo{
		Table:      name,
		Path:       dbPath,
		Rows:       len(rows),
		SourceHash: sourceHash,
		ExportedAt: now,
	}, nil
}

// ReadExportInfo returns the metadata of a previous export, or nil if dbPath
// holds no export of the named table.
func ReadExportInfo(ctx context.Context, dbPath, name string) (*ExportInfo, error) {
	db, err := openExportDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var exists int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = '_meta'").Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("inspecting database: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	meta := make(map[string]string)
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM _meta")
	if err != nil {
		return nil, fmt.Errorf("reading meta table: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v.String
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if meta["source_table"] != name {
		return nil, nil
	}

	info := &ExportInfo{
		Table:      name,
		Path:       dbPath,
		SourceHash: meta["source_hash"],
	}
	if ts := meta["exported_at"]; ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			info.ExportedAt = t
		}
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&info.Rows); err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	return info, nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("updating %s: %w", key, err)
	}
	return nil
}

// convertValueForSQLite converts a record value to a SQLite-compatible value.
func convertValueForSQLite(value any) any {
	if b, ok := value.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return value
}
