package grid

import (
	"context"

	"github.com/aldenmeer/gridline/pkg/filter"
)

// Compile-time interface guard.
var _ Source[struct{}] = (*appendSortSource[struct{}])(nil)

// SortedBy decorates src so the given sort criteria are appended after any
// caller-supplied ones: caller sorts keep precedence, the appended defaults
// break ties and order otherwise-unsorted fetches.
//
// With no sort criteria SortedBy is a no-op and returns src unchanged. A
// buffered delegate is a configuration error reported here, at wrap time,
// never deferred to the first fetch.
func SortedBy[T any](src Source[T], sorts ...Sort) (Source[T], error) {
	if len(sorts) == 0 {
		return src, nil
	}
	if src.Buffered() {
		return nil, ErrBufferedDelegate
	}
	appended := make([]Sort, len(sorts))
	copy(appended, sorts)
	return &appendSortSource[T]{delegate: src, appended: appended}, nil
}

// appendSortSource forwards every fetch with a derived sort list; filter,
// offset, and limit pass through unchanged.
type appendSortSource[T any] struct {
	delegate Source[T]
	appended []Sort
}

func (s *appendSortSource[T]) Fetch(ctx context.Context, q Query[T]) ([]T, error) {
	derived := q
	derived.Sort = make([]Sort, 0, len(q.Sort)+len(s.appended))
	derived.Sort = append(derived.Sort, q.Sort...)
	derived.Sort = append(derived.Sort, s.appended...)
	return s.delegate.Fetch(ctx, derived)
}

func (s *appendSortSource[T]) Count(ctx context.Context, f filter.Filter[T]) (int, error) {
	return s.delegate.Count(ctx, f)
}

func (s *appendSortSource[T]) Buffered() bool { return false }
