package main

import (
	"errors"

	"github.com/anakievah/pdb/internal/shell"
	"github.com/anakievah/pdb/internal/store"
	"github.com/anakievah/pdb/internal/table"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, I/O failure)
	ExitConfigError = 2 // Configuration error (bad config file, env var or flag)
	ExitDataError   = 3 // Data error (invalid schema, type mismatch, corrupt document)
	ExitNotFound    = 4 // Table not found
)

// exitCodeFor maps an operation error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, table.ErrTableNotFound):
		return ExitNotFound
	case errors.Is(err, table.ErrDuplicateTable),
		errors.Is(err, table.ErrInvalidSchema),
		errors.Is(err, table.ErrSchemaMismatch),
		errors.Is(err, table.ErrTypeMismatch),
		errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, store.ErrCorruptData),
		errors.Is(err, shell.ErrSyntax),
		errors.Is(err, shell.ErrUnknownCommand):
		return ExitDataError
	default:
		return ExitError
	}
}
