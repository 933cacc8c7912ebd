package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSQL is returned by SQL for filters that only match in-process.
var ErrNoSQL = errors.New("filter: no SQL form")

// SQLer is implemented by filters that can render themselves as a
// parameterized SQL fragment.
type SQLer interface {
	SQL() (clause string, args []any)
}

// SQL renders a filter as a WHERE fragment with positional args. A nil
// filter renders to an empty clause (no constraint). Filters without a SQL
// form (Func) return an error wrapping ErrNoSQL; callers decide whether to
// fail the query or fall back to in-memory evaluation.
func SQL[T any](f Filter[T]) (string, []any, error) {
	if f == nil {
		return "", nil, nil
	}

	if conj, ok := f.(*conjunction[T]); ok {
		clauses := make([]string, 0, len(conj.children))
		var args []any
		for _, child := range conj.children {
			clause, childArgs, err := SQL(child)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, childArgs...)
		}
		return "(" + strings.Join(clauses, " AND ") + ")", args, nil
	}

	s, ok := f.(SQLer)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrNoSQL, f)
	}
	clause, args := s.SQL()
	return clause, args, nil
}
