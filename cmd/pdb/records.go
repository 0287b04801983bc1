package main

import (
	"fmt"

	"github.com/anakievah/pdb/internal/shell"
	"github.com/anakievah/pdb/internal/table"
	"github.com/spf13/cobra"
)

var (
	selectWhere []string
	updateSet   []string
	updateWhere []string
	deleteWhere []string
	deleteYes   bool
)

func init() {
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)

	// Everything after the table name is a value, so "-5" is not a flag
	insertCmd.Flags().SetInterspersed(false)

	selectCmd.Flags().StringArrayVarP(&selectWhere, "where", "w", nil, "Condition col=value (repeatable, all must hold)")

	updateCmd.Flags().StringArrayVarP(&updateSet, "set", "s", nil, "Assignment col=value (repeatable)")
	updateCmd.Flags().StringArrayVarP(&updateWhere, "where", "w", nil, "Condition col=value (repeatable, all must hold)")
	updateCmd.MarkFlagRequired("set")
	updateCmd.MarkFlagRequired("where")

	deleteCmd.Flags().StringArrayVarP(&deleteWhere, "where", "w", nil, "Condition col=value (repeatable, all must hold)")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
	deleteCmd.MarkFlagRequired("where")
}

// parseAssignments parses col=value arguments. A quoted value is always a
// string; bare digits are integers and true/false are booleans.
func parseAssignments(flag string, items []string) (map[string]any, error) {
	out := make(map[string]any, len(items))
	for _, item := range items {
		col, v, err := shell.ParseAssignment(item)
		if err != nil {
			return nil, fmt.Errorf("--%s %q: %w", flag, item, err)
		}
		if _, dup := out[col]; dup {
			return nil, fmt.Errorf("%w: --%s repeats column %q", shell.ErrSyntax, flag, col)
		}
		out[col] = v
	}
	return out, nil
}

// parseWhere parses --where flags. No flags yield a nil predicate.
func parseWhere(items []string) (table.Predicate, error) {
	if len(items) == 0 {
		return nil, nil
	}
	m, err := parseAssignments("where", items)
	if err != nil {
		return nil, err
	}
	return table.Predicate(m), nil
}

var insertCmd = &cobra.Command{
	Use:   "insert <table> <value>...",
	Short: "Insert a record",
	Long: `Insert a record. Values are given in column order, excluding ID, and are
converted to each column's type. The new record's ID is one more than the
largest existing ID.

Flags must come before the table name; every argument after it is taken as a
value, including ones starting with "-".

Examples:
  pdb insert users Alice 30 true
  pdb insert --human users Bob -5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInsert,
}

func runInsert(cmd *cobra.Command, args []string) error {
	d := newDispatcher(openStore())
	values := append([]string{}, args[1:]...)
	printResult(dispatch(cmd.Context(), d, shell.Command{Op: shell.OpInsert, Table: args[0], Values: values}))
	return nil
}

var selectCmd = &cobra.Command{
	Use:   "select <table>",
	Short: "Select records",
	Long: `Select the records of a table, optionally filtered by equality conditions.

Examples:
  pdb select users
  pdb select users --where age=30 --where active=true
  pdb select users --where 'name="Alice"' --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func runSelect(cmd *cobra.Command, args []string) error {
	where, err := parseWhere(selectWhere)
	exitOnError(err)

	d := newDispatcher(openStore())
	printResult(dispatch(cmd.Context(), d, shell.Command{Op: shell.OpSelect, Table: args[0], Where: where}))
	return nil
}

var updateCmd = &cobra.Command{
	Use:   "update <table>",
	Short: "Update records",
	Long: `Set columns on every record matching the conditions. Assigned values are
converted to the column's type; ID cannot be set.

Example:
  pdb update users --set age=31 --where name=Alice`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	set, err := parseAssignments("set", updateSet)
	exitOnError(err)
	where, err := parseWhere(updateWhere)
	exitOnError(err)

	d := newDispatcher(openStore())
	printResult(dispatch(cmd.Context(), d, shell.Command{Op: shell.OpUpdate, Table: args[0], Set: set, Where: where}))
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete records",
	Long: `Delete every record matching the conditions.

Asks for confirmation when stdin is a terminal; otherwise --yes is required.

Example:
  pdb delete users --where ID=2 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	where, err := parseWhere(deleteWhere)
	exitOnError(err)

	d := newDispatcher(openStore())
	d.Confirm = newConfirmer(deleteYes)
	printResult(dispatch(cmd.Context(), d, shell.Command{Op: shell.OpDelete, Table: args[0], Where: where}))
	return nil
}
