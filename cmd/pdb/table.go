package main

import (
	"github.com/anakievah/pdb/internal/shell"
	"github.com/spf13/cobra"
)

var dropTableYes bool

func init() {
	rootCmd.AddCommand(createTableCmd)
	rootCmd.AddCommand(listTablesCmd)
	rootCmd.AddCommand(dropTableCmd)
	dropTableCmd.Flags().BoolVarP(&dropTableYes, "yes", "y", false, "Drop without asking for confirmation")
}

var createTableCmd = &cobra.Command{
	Use:   "create-table <name> <column:type>...",
	Short: "Create a table",
	Long: `Create a table with the given typed columns.

Column types are int, str and bool. An ID:int column is added automatically
as the first column and must not be listed.

Example:
  pdb create-table users name:str age:int active:bool`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCreateTable,
}

func runCreateTable(cmd *cobra.Command, args []string) error {
	d := newDispatcher(openStore())
	res := dispatch(cmd.Context(), d, shell.Command{Op: shell.OpCreateTable, Table: args[0], Columns: args[1:]})
	printResult(res)
	return nil
}

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List tables",
	Args:  cobra.NoArgs,
	RunE:  runListTables,
}

func runListTables(cmd *cobra.Command, args []string) error {
	d := newDispatcher(openStore())
	printResult(dispatch(cmd.Context(), d, shell.Command{Op: shell.OpListTables}))
	return nil
}

var dropTableCmd = &cobra.Command{
	Use:   "drop-table <name>",
	Short: "Drop a table and its rows",
	Long: `Drop a table: remove it from the schema document and delete its row
document.

Asks for confirmation when stdin is a terminal; otherwise --yes is required.

Example:
  pdb drop-table users --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDropTable,
}

func runDropTable(cmd *cobra.Command, args []string) error {
	d := newDispatcher(openStore())
	d.Confirm = newConfirmer(dropTableYes)
	printResult(dispatch(cmd.Context(), d, shell.Command{Op: shell.OpDropTable, Table: args[0]}))
	return nil
}
