package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when a confirmation is needed but nobody can
// answer it.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal; use --yes")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PromptConfirmer asks a [y/N] question and reads the answer from In.
type PromptConfirmer struct {
	In          *bufio.Reader
	Out         io.Writer
	Interactive bool // false refuses to prompt
	AutoApprove bool // approve without asking
}

// Confirm implements Confirmer. Only "y" and "yes" approve.
func (c *PromptConfirmer) Confirm(prompt string) (bool, error) {
	if c.AutoApprove {
		return true, nil
	}
	if !c.Interactive {
		return false, ErrNotInteractive
	}

	_, _ = fmt.Fprintf(c.Out, "%s [y/N] ", prompt)
	answer, err := readLine(c.In)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

// readLine reads one line without its terminator. A final line without a
// newline is returned with a nil error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
