package table

import "errors"

// Error kinds surfaced by schema and record operations. Callers wrap these
// with context and match them with errors.Is.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrDuplicateTable = errors.New("table already exists")
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrUnknownColumn  = errors.New("unknown column")
)
