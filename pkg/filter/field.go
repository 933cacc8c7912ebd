package filter

import (
	"fmt"
	"strings"
)

// Field describes one filterable (and sortable) attribute of a row type.
// Name is the logical name used in queries and messages, Column the backing
// SQL column, and Get extracts the attribute value from a row.
type Field[T any] struct {
	Name   string
	Column string
	Get    func(row T) any
}

// Eq matches rows whose field value equals v.
func (f Field[T]) Eq(v any) Filter[T] { return &cmp[T]{field: f, op: opEq, value: v} }

// NotEq matches rows whose field value differs from v.
func (f Field[T]) NotEq(v any) Filter[T] { return &cmp[T]{field: f, op: opNe, value: v} }

// Gt matches rows whose field value is greater than v.
func (f Field[T]) Gt(v any) Filter[T] { return &cmp[T]{field: f, op: opGt, value: v} }

// Lt matches rows whose field value is less than v.
func (f Field[T]) Lt(v any) Filter[T] { return &cmp[T]{field: f, op: opLt, value: v} }

// Contains matches rows whose string field value contains s.
func (f Field[T]) Contains(s string) Filter[T] {
	return &cmp[T]{field: f, op: opContains, value: s}
}

// Prefix matches rows whose string field value starts with s.
func (f Field[T]) Prefix(s string) Filter[T] {
	return &cmp[T]{field: f, op: opPrefix, value: s}
}

// In matches rows whose field value equals any of vs.
func (f Field[T]) In(vs ...any) Filter[T] {
	return &cmp[T]{field: f, op: opIn, value: nil, values: vs}
}

// op identifies a comparison operator.
type op string

const (
	opEq       op = "="
	opNe       op = "!="
	opGt       op = ">"
	opLt       op = "<"
	opContains op = "contains"
	opPrefix   op = "prefix"
	opIn       op = "in"
)

// cmp is a single field comparison. It matches in-process via the field
// accessor and renders as a parameterized SQL fragment via the field column.
type cmp[T any] struct {
	field  Field[T]
	op     op
	value  any
	values []any // opIn only
}

func (c *cmp[T]) Matches(row T) bool {
	got := c.field.Get(row)
	switch c.op {
	case opEq:
		return equalValues(got, c.value)
	case opNe:
		return !equalValues(got, c.value)
	case opGt:
		return Compare(got, c.value) > 0
	case opLt:
		return Compare(got, c.value) < 0
	case opContains:
		return strings.Contains(stringValue(got), stringValue(c.value))
	case opPrefix:
		return strings.HasPrefix(stringValue(got), stringValue(c.value))
	case opIn:
		for _, v := range c.values {
			if equalValues(got, v) {
				return true
			}
		}
		return false
	}
	return false
}

func (c *cmp[T]) String() string {
	if c.op == opIn {
		return fmt.Sprintf("%s in %v", c.field.Name, c.values)
	}
	return fmt.Sprintf("%s %s %v", c.field.Name, c.op, c.value)
}

// likeEscaper escapes the LIKE metacharacters in a needle so the pattern
// matches them literally, keeping SQL evaluation in step with Matches.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQL implements SQLer.
func (c *cmp[T]) SQL() (string, []any) {
	col := c.field.Column
	if col == "" {
		col = c.field.Name
	}
	switch c.op {
	case opContains:
		return col + ` LIKE ? ESCAPE '\'`, []any{"%" + likeEscaper.Replace(stringValue(c.value)) + "%"}
	case opPrefix:
		return col + ` LIKE ? ESCAPE '\'`, []any{likeEscaper.Replace(stringValue(c.value)) + "%"}
	case opIn:
		if len(c.values) == 0 {
			// IN () is a syntax error in SQLite; no value matches.
			return "1=0", nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.values)), ", ")
		return col + " IN (" + placeholders + ")", append([]any{}, c.values...)
	case opNe:
		return col + " <> ?", []any{c.value}
	default:
		return col + " " + string(c.op) + " ?", []any{c.value}
	}
}

// Func wraps an arbitrary predicate function as a Filter. The name is the
// filter's identity for deduplication, so two Func filters with the same name
// are treated as the same constraint. Func filters have no SQL form and can
// only drive in-memory sources.
func Func[T any](name string, fn func(row T) bool) Filter[T] {
	return &funcFilter[T]{name: name, fn: fn}
}

type funcFilter[T any] struct {
	name string
	fn   func(T) bool
}

func (f *funcFilter[T]) Matches(row T) bool { return f.fn(row) }
func (f *funcFilter[T]) String() string     { return "func(" + f.name + ")" }
