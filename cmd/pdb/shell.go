package main

import (
	"os"
	"os/signal"

	"github.com/anakievah/pdb/internal/shell"
	"github.com/spf13/cobra"
)

var shellYes bool

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().BoolVarP(&shellYes, "yes", "y", false, "Run destructive commands without confirmation")
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell (default)",
	Long: `Start the interactive shell. Commands are read one per line from stdin;
type 'help' for the command list and 'exit' to quit.

Input may also be piped in:
  printf 'create_table users name:str\nlist_tables\n' | pdb shell

When stdin is not a terminal, drop_table and delete need --yes.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sh := &shell.Shell{
		In:          os.Stdin,
		Out:         os.Stdout,
		Dispatcher:  newDispatcher(openStore()),
		Interactive: shell.IsTerminal(os.Stdin),
		AutoApprove: shellYes,
	}
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}
