package main

import (
	"fmt"
	"os"

	"github.com/anakievah/pdb/internal/store"
	"github.com/anakievah/pdb/internal/table"
	"github.com/spf13/cobra"
)

var exportForce bool

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "Export even if the database is up to date")
}

var exportCmd = &cobra.Command{
	Use:   "export <table> <file.db>",
	Short: "Export a table to a SQLite database",
	Long: `Write a table into a SQLite database file, replacing any previous export of
the same table. Column types map to INTEGER and TEXT, and ID becomes the
primary key. A _meta table records the source table, a hash of its row
document and the export time.

The export is skipped when the database already holds the table at the same
hash, unless --force is given.

Example:
  pdb export users users.db
  sqlite3 users.db 'SELECT * FROM users'`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	name, dbPath := args[0], args[1]
	ctx := cmd.Context()
	st := openStore()

	reg, err := st.LoadRegistry()
	exitOnError(err)
	schema, err := table.GetSchema(reg, name)
	exitOnError(err)

	hash, err := st.RowsHash(name)
	if err != nil {
		exitWithError(ExitError, "hashing row document: %v", err)
	}

	if !exportForce {
		if _, err := os.Stat(dbPath); err == nil {
			prev, err := store.ReadExportInfo(ctx, dbPath, name)
			if err != nil {
				exitWithError(ExitError, "reading previous export: %v", err)
			}
			if prev != nil && prev.SourceHash == hash {
				logger.Debug("export up to date", "table", name, "path", dbPath)
				prev.Skipped = true
				printExport(prev)
				return nil
			}
		}
	}

	rows, err := st.LoadRows(name)
	exitOnError(err)

	info, err := store.ExportSQLite(ctx, dbPath, name, schema, rows, hash)
	if err != nil {
		exitWithError(ExitError, "exporting %q: %v", name, err)
	}
	logger.Info("exported table", "table", name, "path", dbPath, "rows", info.Rows)

	printExport(info)
	return nil
}

func printExport(info *store.ExportInfo) {
	if !humanOutput {
		outputJSON(info)
		return
	}
	if info.Skipped {
		fmt.Printf("%s is up to date with table '%s' (%d rows)\n", info.Path, info.Table, info.Rows)
		return
	}
	fmt.Printf("Exported %d rows from '%s' to %s\n", info.Rows, info.Table, info.Path)
}
