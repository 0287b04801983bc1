package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Predicate is an equality conjunction: a record matches when every
// column/value pair is present in it with an equal value of the same type.
type Predicate map[string]any

// Matches reports whether the record satisfies every pair of the predicate.
// A column absent from the record is a non-match, not an error. The empty
// predicate matches everything.
func (p Predicate) Matches(r Record) bool {
	for col, want := range p {
		got, ok := r[col]
		if !ok {
			return false
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

// Columns returns the predicate's column names in sorted order.
func (p Predicate) Columns() []string {
	cols := make([]string, 0, len(p))
	for col := range p {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Key returns a canonical string for the predicate. Two predicates have the
// same key iff they hold the same pairs; value types are part of the key so
// 1 and "1" do not collide.
func (p Predicate) Key() string {
	var sb strings.Builder
	for i, col := range p.Columns() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(strconv.Quote(col))
		sb.WriteByte('=')
		sb.WriteString(typedLiteral(p[col]))
	}
	return sb.String()
}

// String renders the predicate as "a = 1 and b = 'x'".
func (p Predicate) String() string {
	parts := make([]string, 0, len(p))
	for _, col := range p.Columns() {
		v := normalize(p[col])
		if s, ok := v.(string); ok {
			parts = append(parts, fmt.Sprintf("%s = %q", col, s))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = %s", col, Format(v)))
	}
	return strings.Join(parts, " and ")
}

func equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case int64:
		y, ok := b.(int64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case nil:
		return b == nil
	}
	return false
}

func typedLiteral(v any) string {
	switch x := normalize(v).(type) {
	case int64:
		return "i:" + strconv.FormatInt(x, 10)
	case string:
		return "s:" + strconv.Quote(x)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T:%v", x, x)
	}
}
