package shell

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/anakievah/pdb/internal/table"
)

// MaxColumnWidth caps the width of a rendered table column.
const MaxColumnWidth = 40

// HelpText lists the shell commands.
const HelpText = `Tables:
  create_table <name> <column:type> ...            create a table (types: int, str, bool)
  list_tables                                      list tables
  drop_table <name>                                drop a table and its rows

Records:
  insert into <name> values (<v1>, <v2>, ...)      add a record
  select from <name> [where <col> = <v> [and ...]] read records
  update <name> set <col> = <v>[, ...] where ...   change records
  delete from <name> where <col> = <v> [and ...]   remove records
  info <name>                                      show columns and row count

General:
  help                                             show this help
  exit                                             leave the shell
`

// Render writes a human-readable form of res.
func Render(w io.Writer, res *Result) error {
	if res.Cancelled {
		_, err := fmt.Fprintln(w, "Operation cancelled.")
		return err
	}

	var err error
	switch res.Op {
	case OpCreateTable:
		_, err = fmt.Fprintf(w, "Table %q created with columns: %s\n", res.Table, res.Schema)
	case OpListTables:
		err = RenderTables(w, res.Tables)
	case OpDropTable:
		_, err = fmt.Fprintf(w, "Table %q dropped.\n", res.Table)
	case OpInsert:
		id, _ := res.Record.ID()
		_, err = fmt.Fprintf(w, "Record with ID=%d inserted into %q.\n", id, res.Table)
	case OpSelect:
		err = RenderRows(w, res.Schema, res.Rows)
	case OpUpdate:
		_, err = fmt.Fprintf(w, "Updated %s in %q.\n", plural(res.Count, "row"), res.Table)
	case OpDelete:
		_, err = fmt.Fprintf(w, "Deleted %s from %q.\n", plural(res.Count, "row"), res.Table)
	case OpInfo:
		err = RenderInfo(w, res.Info.Name, res.Info.Schema, res.Info.Rows)
	case OpHelp:
		_, err = io.WriteString(w, HelpText)
	case OpExit:
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, res.Op)
	}
	return err
}

// RenderTables writes a table listing.
func RenderTables(w io.Writer, names []string) error {
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "No tables yet.")
		return err
	}
	var b strings.Builder
	b.WriteString("Tables:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderInfo writes a table summary.
func RenderInfo(w io.Writer, name string, schema table.Schema, rows int) error {
	_, err := fmt.Fprintf(w, "Table:   %s\nColumns: %s\nRows:    %d\n", name, schema, rows)
	return err
}

// RenderRows writes rows as an aligned table with columns in schema order.
func RenderRows(w io.Writer, schema table.Schema, rows []table.Record) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	cols := schema.Names()

	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, r := range rows {
		for i, col := range cols {
			if n := utf8.RuneCountInString(table.Format(r[col])); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		if widths[i] > MaxColumnWidth {
			widths[i] = MaxColumnWidth
		}
	}

	var b strings.Builder

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = padRight(strings.ToUpper(col), widths[i])
	}
	b.WriteString(strings.TrimRight(strings.Join(header, "  "), " "))
	b.WriteByte('\n')

	for _, r := range rows {
		line := make([]string, len(cols))
		for i, col := range cols {
			line[i] = padRight(truncate(table.Format(r[col]), widths[i]), widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(line, "  "), " "))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "(%s)\n", plural(len(rows), "row"))

	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads a string with spaces on the right to width characters.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// truncate shortens s to maxLen characters, ending in "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
