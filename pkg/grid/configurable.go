package grid

import (
	"context"

	"github.com/aldenmeer/gridline/pkg/filter"
)

// Compile-time interface guard.
var _ Source[struct{}] = (*Configurable[struct{}])(nil)

// Configurable wraps a delegate Source with a settable base filter. Every
// Fetch and Count combines the base filter with the filter carried by the
// request via conjunction, so the wrapped source only ever sees the
// intersection.
//
// Configurable performs no locking; callers serialize access (the session
// manager's per-session lock does this for session-owned wrappers).
type Configurable[T any] struct {
	delegate Source[T]
	base     filter.Filter[T]
}

// NewConfigurable wraps delegate with an initially unset base filter.
func NewConfigurable[T any](delegate Source[T]) *Configurable[T] {
	return &Configurable[T]{delegate: delegate}
}

// SetFilter replaces the base filter wholesale. A nil filter clears it.
func (c *Configurable[T]) SetFilter(f filter.Filter[T]) { c.base = f }

// Filter returns the current base filter, possibly nil.
func (c *Configurable[T]) Filter() filter.Filter[T] { return c.base }

// Fetch implements Source. The request filter is combined with the base
// filter before delegating.
func (c *Configurable[T]) Fetch(ctx context.Context, q Query[T]) ([]T, error) {
	q.Filter = filter.Combine(c.base, q.Filter)
	return c.delegate.Fetch(ctx, q)
}

// Count implements Source.
func (c *Configurable[T]) Count(ctx context.Context, f filter.Filter[T]) (int, error) {
	return c.delegate.Count(ctx, filter.Combine(c.base, f))
}

// Buffered implements Source, reporting the delegate's buffering.
func (c *Configurable[T]) Buffered() bool { return c.delegate.Buffered() }

// WithFilter returns a source with f permanently ANDed into every request.
// It layers two Configurable wrappers: the inner one holds f and is not
// reachable from the returned outer wrapper, so SetFilter on the result can
// only add constraints, never remove f. Chaining WithFilter intersects
// constraints.
//
// A nil f is a caller error, rejected immediately: a conjunction with nil is
// "no additional constraint", and callers that want that should use
// NewConfigurable directly.
func WithFilter[T any](src Source[T], f filter.Filter[T]) (*Configurable[T], error) {
	if f == nil {
		return nil, ErrNilFilter
	}
	inner := NewConfigurable(src)
	inner.SetFilter(f)
	return NewConfigurable[T](inner), nil
}
