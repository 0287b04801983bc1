// Package shell implements the interactive command language: tokenizing and
// parsing command lines, dispatching them to the record engine with
// persistence, and rendering results.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed before each command when the shell is interactive.
const Prompt = "pdb> "

const welcome = `pdb: a minimal file-backed table store.
Type "help" for the list of commands, "exit" to quit.
`

// Shell is a read-eval-print loop over a Dispatcher.
type Shell struct {
	In          io.Reader
	Out         io.Writer
	Dispatcher  *Dispatcher
	Interactive bool // print prompts and allow confirmations
	AutoApprove bool // skip confirmations for destructive commands
}

// Run reads commands until exit, end of input or context cancellation.
// Command errors are printed and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	in := bufio.NewReader(s.In)
	s.Dispatcher.Confirm = &PromptConfirmer{
		In:          in,
		Out:         s.Out,
		Interactive: s.Interactive,
		AutoApprove: s.AutoApprove,
	}

	fmt.Fprint(s.Out, welcome)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Interactive {
			fmt.Fprint(s.Out, Prompt)
		}

		line, err := readLine(in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.Out, "\nBye.")
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		done, err := s.Exec(ctx, line)
		if err != nil {
			fmt.Fprintf(s.Out, "Error: %v\n", err)
			continue
		}
		if done {
			fmt.Fprintln(s.Out, "Bye.")
			return nil
		}
	}
}

// Exec parses, dispatches and renders one command line. It reports whether
// the line asked the shell to exit.
func (s *Shell) Exec(ctx context.Context, line string) (bool, error) {
	cmd, err := Parse(line)
	if err != nil {
		return false, err
	}
	if cmd.Op == OpExit {
		return true, nil
	}

	res, err := s.Dispatcher.Execute(ctx, cmd)
	if err != nil {
		return false, err
	}
	return false, Render(s.Out, res)
}
