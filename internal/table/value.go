package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Coerce converts a textual value to the Go value stored for a column type:
// int64 for int, bool for bool, string for str.
func Coerce(raw string, t ColumnType) (any, error) {
	switch t {
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: expected integer, got %q", ErrTypeMismatch, raw)
		}
		return n, nil

	case TypeBool:
		switch strings.ToLower(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("%w: expected true or false, got %q", ErrTypeMismatch, raw)

	case TypeStr:
		return raw, nil
	}

	return nil, fmt.Errorf("%w: unsupported column type %q", ErrInvalidSchema, t)
}

// Format renders a stored value as text. It is the inverse of Coerce.
func Format(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// normalize maps Go integer kinds onto int64 so values produced by callers
// compare equal to values decoded from storage.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	default:
		return v
	}
}
