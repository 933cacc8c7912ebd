package grid

import (
	"context"
	"sort"

	"github.com/aldenmeer/gridline/pkg/filter"
)

// Compile-time interface guard.
var _ Source[struct{}] = (*SliceSource[struct{}])(nil)

// SliceSource is a fully-buffered Source over a fixed row slice. It filters
// and sorts in memory using the field accessors it was built with. Intended
// for small row sets and tests; Buffered() reports true so the sort-append
// wrapper refuses to wrap it.
type SliceSource[T any] struct {
	rows   []T
	fields map[string]filter.Field[T]
}

// NewSliceSource creates a SliceSource over rows. The fields are used to
// resolve sort criteria by logical name; sort criteria naming an unknown
// field are ignored.
func NewSliceSource[T any](rows []T, fields ...filter.Field[T]) *SliceSource[T] {
	byName := make(map[string]filter.Field[T], len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &SliceSource[T]{rows: rows, fields: byName}
}

// Buffered implements Source.
func (s *SliceSource[T]) Buffered() bool { return true }

// Fetch implements Source.
func (s *SliceSource[T]) Fetch(_ context.Context, q Query[T]) ([]T, error) {
	q = q.Normalize()

	matched := s.matching(q.Filter)

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return s.less(matched[i], matched[j], q.Sort)
		})
	}

	if q.Offset >= len(matched) {
		return []T{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Count implements Source.
func (s *SliceSource[T]) Count(_ context.Context, f filter.Filter[T]) (int, error) {
	return len(s.matching(f)), nil
}

// matching returns a fresh slice of the rows the filter accepts.
func (s *SliceSource[T]) matching(f filter.Filter[T]) []T {
	pred := Predicate(f)
	out := make([]T, 0, len(s.rows))
	for _, row := range s.rows {
		if pred == nil || pred(row) {
			out = append(out, row)
		}
	}
	return out
}

// less orders two rows by the sort criteria, falling through to the next
// criterion on ties.
func (s *SliceSource[T]) less(a, b T, sorts []Sort) bool {
	for _, sc := range sorts {
		field, ok := s.fields[sc.Field]
		if !ok {
			continue
		}
		c := filter.Compare(field.Get(a), field.Get(b))
		if c == 0 {
			continue
		}
		if sc.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}
