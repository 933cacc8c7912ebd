// Package filter provides composable row predicates for the grid data layer.
// A Filter matches rows in-process and, for field-based filters, also renders
// itself as a parameterized SQL fragment so the same filter value can drive
// both in-memory sources and the SQLite-backed ones.
package filter

import (
	"sort"
	"strings"
)

// Filter is an immutable boolean predicate over rows of type T.
// Filters combine via And/Combine; a nil Filter imposes no constraint.
type Filter[T any] interface {
	// Matches reports whether the row satisfies the filter.
	// Implementations must be side-effect-free.
	Matches(row T) bool

	// String returns a stable description of the filter. Two filters with
	// equal strings are treated as the same constraint when combining.
	String() string
}

// Combine returns the conjunction of a and b. A nil side imposes no
// constraint: Combine(f, nil) == f and Combine(nil, nil) == nil.
// Nested conjunctions are flattened and duplicate constraints collapse.
func Combine[T any](a, b Filter[T]) Filter[T] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	children := appendFlat(nil, a)
	children = appendFlat(children, b)
	children = dedup(children)
	if len(children) == 1 {
		return children[0]
	}
	return &conjunction[T]{children: children}
}

// And combines any number of filters via conjunction, skipping nil entries.
// Returns nil when every argument is nil.
func And[T any](filters ...Filter[T]) Filter[T] {
	var out Filter[T]
	for _, f := range filters {
		out = Combine(out, f)
	}
	return out
}

// conjunction matches when every child matches. Children are kept as a set:
// construction deduplicates by String identity.
type conjunction[T any] struct {
	children []Filter[T]
}

func (c *conjunction[T]) Matches(row T) bool {
	for _, child := range c.children {
		if !child.Matches(row) {
			return false
		}
	}
	return true
}

func (c *conjunction[T]) String() string {
	parts := make([]string, len(c.children))
	for i, child := range c.children {
		parts[i] = child.String()
	}
	// Sorted so the identity is stable regardless of combine order.
	sort.Strings(parts)
	return "(" + strings.Join(parts, " AND ") + ")"
}

// appendFlat appends f to dst, expanding nested conjunctions so combining
// never builds trees of trees.
func appendFlat[T any](dst []Filter[T], f Filter[T]) []Filter[T] {
	if conj, ok := f.(*conjunction[T]); ok {
		return append(dst, conj.children...)
	}
	return append(dst, f)
}

// dedup collapses filters with identical String identity, keeping first-seen
// order.
func dedup[T any](filters []Filter[T]) []Filter[T] {
	seen := make(map[string]struct{}, len(filters))
	out := filters[:0]
	for _, f := range filters {
		key := f.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
