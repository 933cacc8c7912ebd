package grid

import (
	"context"
	"reflect"
	"testing"

	"github.com/aldenmeer/gridline/pkg/filter"
)

type person struct {
	Name string
	Age  int
}

var (
	byName = filter.Field[person]{Name: "name", Column: "name", Get: func(p person) any { return p.Name }}
	byAge  = filter.Field[person]{Name: "age", Column: "age", Get: func(p person) any { return p.Age }}
)

func testPeople() []person {
	return []person{
		{"carol", 35},
		{"alice", 30},
		{"dave", 30},
		{"bob", 25},
	}
}

func newPeopleSource() *SliceSource[person] {
	return NewSliceSource(testPeople(), byName, byAge)
}

func names(people []person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func TestSliceSourceFetchAll(t *testing.T) {
	src := newPeopleSource()

	rows, err := src.Fetch(context.Background(), Query[person]{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("len(rows) = %d, want 4", len(rows))
	}
}

func TestSliceSourceFilter(t *testing.T) {
	src := newPeopleSource()

	rows, err := src.Fetch(context.Background(), Query[person]{Filter: byAge.Eq(30)})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got, want := names(rows), []string{"alice", "dave"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestSliceSourceSort(t *testing.T) {
	src := newPeopleSource()

	// Age ascending, name descending as tie-breaker.
	rows, err := src.Fetch(context.Background(), Query[person]{
		Sort: []Sort{{Field: "age"}, {Field: "name", Desc: true}},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := []string{"bob", "dave", "alice", "carol"}
	if got := names(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestSliceSourceUnknownSortFieldIgnored(t *testing.T) {
	src := newPeopleSource()

	rows, err := src.Fetch(context.Background(), Query[person]{
		Sort: []Sort{{Field: "nonexistent"}, {Field: "name"}},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := []string{"alice", "bob", "carol", "dave"}
	if got := names(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestSliceSourcePaging(t *testing.T) {
	src := newPeopleSource()
	ctx := context.Background()
	sorted := []Sort{{Field: "name"}}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{"first page", 0, 2, []string{"alice", "bob"}},
		{"second page", 2, 2, []string{"carol", "dave"}},
		{"offset past end", 10, 2, []string{}},
		{"no limit", 1, 0, []string{"bob", "carol", "dave"}},
		{"negative offset normalized", -3, 1, []string{"alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := src.Fetch(ctx, Query[person]{Offset: tt.offset, Limit: tt.limit, Sort: sorted})
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if got := names(rows); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSliceSourceCount(t *testing.T) {
	src := newPeopleSource()

	total, err := src.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 4 {
		t.Errorf("Count(nil) = %d, want 4", total)
	}

	filtered, err := src.Count(context.Background(), byAge.Gt(28))
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if filtered != 3 {
		t.Errorf("Count(age > 28) = %d, want 3", filtered)
	}
}

func TestSliceSourceBuffered(t *testing.T) {
	if !newPeopleSource().Buffered() {
		t.Error("Buffered() = false, want true")
	}
}

func TestPredicate(t *testing.T) {
	if Predicate[person](nil) != nil {
		t.Error("Predicate(nil) != nil, want nil")
	}

	pred := Predicate(byAge.Gt(30))
	if pred == nil {
		t.Fatal("Predicate() = nil for non-nil filter")
	}
	if !pred(person{Age: 31}) {
		t.Error("pred(age 31) = false, want true")
	}
	if pred(person{Age: 30}) {
		t.Error("pred(age 30) = true, want false")
	}
}
