package main

import (
	"fmt"
	"os"

	"github.com/anakievah/pdb/internal/engine"
	"github.com/anakievah/pdb/internal/shell"
	"github.com/spf13/cobra"
)

// InfoResponse is the response for the info command.
type InfoResponse struct {
	*engine.TableInfo
	Path     string `json:"path"`
	Checksum string `json:"checksum"` // BLAKE2b-256 of the row document
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <table>",
	Short: "Show a table's columns and row count",
	Long: `Display a table's columns, row count, row document path and a checksum
of the row document.

Example:
  pdb info users --human`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	name := args[0]
	st := openStore()
	d := newDispatcher(st)
	res := dispatch(cmd.Context(), d, shell.Command{Op: shell.OpInfo, Table: name})

	sum, err := st.RowsHash(name)
	if err != nil {
		exitWithError(ExitError, "hashing row document: %v", err)
	}

	if humanOutput {
		exitOnError(shell.Render(os.Stdout, res))
		fmt.Printf("File:    %s\n", st.RowsPath(name))
		fmt.Printf("BLAKE2b: %s\n", sum)
		return nil
	}

	outputJSON(InfoResponse{
		TableInfo: res.Info,
		Path:      st.RowsPath(name),
		Checksum:  sum,
	})
	return nil
}
