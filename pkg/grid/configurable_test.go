package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/aldenmeer/gridline/pkg/filter"
)

// recordingSource is an unbuffered fake that records the last query it saw
// and evaluates filters in memory.
type recordingSource struct {
	rows      []person
	lastQuery Query[person]
	lastCount filter.Filter[person]
	fetchErr  error
}

func (s *recordingSource) Fetch(_ context.Context, q Query[person]) ([]person, error) {
	s.lastQuery = q
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	pred := Predicate(q.Filter)
	var out []person
	for _, p := range s.rows {
		if pred == nil || pred(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *recordingSource) Count(_ context.Context, f filter.Filter[person]) (int, error) {
	s.lastCount = f
	pred := Predicate(f)
	n := 0
	for _, p := range s.rows {
		if pred == nil || pred(p) {
			n++
		}
	}
	return n, nil
}

func (s *recordingSource) Buffered() bool { return false }

func TestConfigurableCombinesBaseAndQueryFilter(t *testing.T) {
	delegate := &recordingSource{rows: testPeople()}
	src := NewConfigurable[person](delegate)
	src.SetFilter(byAge.Gt(28))

	rows, err := src.Fetch(context.Background(), Query[person]{Filter: byName.Prefix("c")})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "carol" {
		t.Errorf("rows = %v, want [carol]", rows)
	}

	// The delegate must see the conjunction, not either filter alone.
	if delegate.lastQuery.Filter == nil {
		t.Fatal("delegate saw nil filter")
	}
	if !delegate.lastQuery.Filter.Matches(person{Name: "carol", Age: 35}) {
		t.Error("combined filter rejects a row both sides accept")
	}
	if delegate.lastQuery.Filter.Matches(person{Name: "carol", Age: 20}) {
		t.Error("combined filter accepts a row the base filter rejects")
	}
}

func TestConfigurableNilBaseAndNilQuery(t *testing.T) {
	delegate := &recordingSource{rows: testPeople()}
	src := NewConfigurable[person](delegate)

	rows, err := src.Fetch(context.Background(), Query[person]{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("len(rows) = %d, want 4", len(rows))
	}
	if delegate.lastQuery.Filter != nil {
		t.Errorf("delegate saw filter %v, want nil", delegate.lastQuery.Filter)
	}
}

func TestConfigurableSetFilterReplacesWholesale(t *testing.T) {
	delegate := &recordingSource{rows: testPeople()}
	src := NewConfigurable[person](delegate)

	src.SetFilter(byAge.Gt(100))
	src.SetFilter(byAge.Gt(28))

	total, err := src.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 3 {
		t.Errorf("Count() = %d, want 3 (second filter replaced the first)", total)
	}
}

func TestWithFilterNilRejected(t *testing.T) {
	delegate := &recordingSource{rows: testPeople()}

	if _, err := WithFilter[person](delegate, nil); !errors.Is(err, ErrNilFilter) {
		t.Errorf("WithFilter(nil) error = %v, want ErrNilFilter", err)
	}
}

func TestWithFilterCannotBeRemoved(t *testing.T) {
	delegate := &recordingSource{rows: testPeople()}

	src, err := WithFilter[person](delegate, byAge.Gt(28))
	if err != nil {
		t.Fatalf("WithFilter() error = %v", err)
	}

	// UI-level SetFilter on the outer layer adds a constraint; the effective
	// filter stays the intersection and never g alone.
	src.SetFilter(byName.Prefix("a"))

	rows, err := src.Fetch(context.Background(), Query[person]{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "alice" {
		t.Errorf("rows = %v, want [alice]", rows)
	}

	// Clearing the outer filter still leaves the inner one in force.
	src.SetFilter(nil)
	total, err := src.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 3 {
		t.Errorf("Count() = %d, want 3 (permanent filter still applies)", total)
	}
}

func TestWithFilterChainsIntersect(t *testing.T) {
	delegate := &recordingSource{rows: testPeople()}

	inner, err := WithFilter[person](delegate, byAge.Gt(26))
	if err != nil {
		t.Fatalf("WithFilter() error = %v", err)
	}
	outer, err := WithFilter[person](inner, byAge.Lt(33))
	if err != nil {
		t.Fatalf("WithFilter() error = %v", err)
	}

	rows, err := outer.Fetch(context.Background(), Query[person]{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	// 26 < age < 33: alice (30) and dave (30).
	if len(rows) != 2 {
		t.Errorf("rows = %v, want 2 rows", rows)
	}
}

func TestWithFilterInnerFilterNotBypassable(t *testing.T) {
	// A source with one row {name: "foobar"}. The permanent filter matches
	// name == "foo", so no outer filter may ever surface the row.
	delegate := &recordingSource{rows: []person{{Name: "foobar"}}}

	src, err := WithFilter[person](delegate, byName.Eq("foo"))
	if err != nil {
		t.Fatalf("WithFilter() error = %v", err)
	}

	rows, err := src.Fetch(context.Background(), Query[person]{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %v, want none", rows)
	}

	// Even a UI filter that matches the row exactly cannot reach past the
	// inner layer.
	src.SetFilter(byName.Eq("foobar"))
	rows, err = src.Fetch(context.Background(), Query[person]{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want none (inner filter bypassed)", rows)
	}
}

func TestConfigurableDelegateErrorPropagates(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	delegate := &recordingSource{fetchErr: wantErr}
	src := NewConfigurable[person](delegate)

	if _, err := src.Fetch(context.Background(), Query[person]{}); !errors.Is(err, wantErr) {
		t.Errorf("Fetch() error = %v, want %v unchanged", err, wantErr)
	}
}
