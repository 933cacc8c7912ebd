// Package grid defines the paged data-source contract that dashboard grids
// bind to, plus the wrapper decorators that layer filters and default sort
// orders over a delegate source without the delegate knowing.
package grid

import (
	"context"
	"errors"

	"github.com/aldenmeer/gridline/pkg/filter"
)

// Sentinel errors for wrapper configuration mistakes. Both are raised at
// wrap time, never at fetch time.
var (
	// ErrBufferedDelegate is returned when a sort-append wrapper is placed
	// around a fully-buffered source. Buffered sources already hold every
	// row, so a delegated default sort order is a configuration mistake.
	ErrBufferedDelegate = errors.New("grid: sort append requires an unbuffered delegate")

	// ErrNilFilter is returned by WithFilter for a nil filter. A nil filter
	// means "no constraint"; callers that want that should wrap with
	// NewConfigurable instead.
	ErrNilFilter = errors.New("grid: WithFilter requires a non-nil filter")
)

// Sort is a single sort criterion: a logical field name and a direction.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Query describes one fetch request against a Source.
type Query[T any] struct {
	Offset int              // rows to skip, negative treated as 0
	Limit  int              // max rows to return, 0 or negative means no limit
	Sort   []Sort           // sort criteria in priority order
	Filter filter.Filter[T] // nil means no constraint
}

// Normalize clamps out-of-range paging values. Sources call it before
// evaluating a query.
func (q Query[T]) Normalize() Query[T] {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	return q
}

// Source is a paged, sortable, filterable row-fetching backend. Fetch
// returns a finite, possibly empty slice of rows; Count returns the number
// of rows the filter matches regardless of paging. Buffered reports whether
// the source holds its entire row set in memory rather than querying a
// backing store per request.
//
// Sources perform no locking; delegate failures propagate to the caller
// unchanged.
type Source[T any] interface {
	Fetch(ctx context.Context, q Query[T]) ([]T, error)
	Count(ctx context.Context, f filter.Filter[T]) (int, error)
	Buffered() bool
}

// Predicate converts a Filter into the native func-predicate form consumed
// by in-memory row evaluation. A nil filter maps to a nil predicate (no
// constraint). The conversion is one-directional and side-effect-free.
func Predicate[T any](f filter.Filter[T]) func(T) bool {
	if f == nil {
		return nil
	}
	return f.Matches
}
