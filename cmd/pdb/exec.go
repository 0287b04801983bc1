package main

import (
	"fmt"
	"strings"

	"github.com/anakievah/pdb/internal/shell"
	"github.com/spf13/cobra"
)

var execYes bool

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().BoolVarP(&execYes, "yes", "y", false, "Run destructive commands without confirmation")
}

var execCmd = &cobra.Command{
	Use:   "exec <command>",
	Short: "Run one shell command",
	Long: `Run a single command in the shell language and exit.

Examples:
  pdb exec 'insert into users values ("Alice", 30)'
  pdb exec 'select from users where name = "Alice"' --human
  pdb exec 'delete from users where ID = 2' --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	c, err := shell.Parse(strings.Join(args, " "))
	exitOnError(err)

	switch c.Op {
	case shell.OpExit:
		return nil
	case shell.OpHelp:
		fmt.Print(shell.HelpText)
		return nil
	}

	d := newDispatcher(openStore())
	d.Confirm = newConfirmer(execYes)
	printResult(dispatch(cmd.Context(), d, c))
	return nil
}
