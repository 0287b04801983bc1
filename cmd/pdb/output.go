package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anakievah/pdb/internal/shell"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitOnError exits with the code matching err, if err is non-nil.
func exitOnError(err error) {
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// newConfirmer asks on stderr and reads stdin, refusing when stdin is not a
// terminal unless yes is set.
func newConfirmer(yes bool) *shell.PromptConfirmer {
	return &shell.PromptConfirmer{
		In:          bufio.NewReader(os.Stdin),
		Out:         os.Stderr,
		Interactive: shell.IsTerminal(os.Stdin),
		AutoApprove: yes,
	}
}

// dispatch executes cmd, exiting on error.
func dispatch(ctx context.Context, d *shell.Dispatcher, cmd shell.Command) *shell.Result {
	res, err := d.Execute(ctx, cmd)
	exitOnError(err)
	return res
}

// printResult writes res in the selected output format.
func printResult(res *shell.Result) {
	if humanOutput {
		exitOnError(shell.Render(os.Stdout, res))
		return
	}

	switch res.Op {
	case shell.OpSelect:
		outputJSON(res.Rows)
	case shell.OpListTables:
		tables := res.Tables
		if tables == nil {
			tables = []string{}
		}
		outputJSON(tables)
	case shell.OpInfo:
		outputJSON(res.Info)
	default:
		outputJSON(res)
	}
}
