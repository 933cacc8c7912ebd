package filter

import (
	"testing"
	"time"
)

type item struct {
	Name     string
	Quantity int
	Updated  time.Time
}

var (
	nameField = Field[item]{Name: "name", Column: "name", Get: func(i item) any { return i.Name }}
	qtyField  = Field[item]{Name: "quantity", Column: "quantity", Get: func(i item) any { return i.Quantity }}
)

func TestCombineNilRules(t *testing.T) {
	f := nameField.Eq("bolt")

	if got := Combine(f, nil); got != f {
		t.Errorf("Combine(f, nil) = %v, want f", got)
	}
	if got := Combine[item](nil, f); got != f {
		t.Errorf("Combine(nil, f) = %v, want f", got)
	}
	if got := Combine[item](nil, nil); got != nil {
		t.Errorf("Combine(nil, nil) = %v, want nil", got)
	}
}

func TestCombineBothMustMatch(t *testing.T) {
	f := Combine(nameField.Eq("bolt"), qtyField.Gt(10))

	tests := []struct {
		row  item
		want bool
	}{
		{item{Name: "bolt", Quantity: 20}, true},
		{item{Name: "bolt", Quantity: 5}, false},
		{item{Name: "nut", Quantity: 20}, false},
		{item{Name: "nut", Quantity: 5}, false},
	}
	for _, tt := range tests {
		if got := f.Matches(tt.row); got != tt.want {
			t.Errorf("Matches(%+v) = %v, want %v", tt.row, got, tt.want)
		}
	}
}

func TestCombineDeduplicates(t *testing.T) {
	a := nameField.Eq("bolt")
	b := nameField.Eq("bolt")

	combined := Combine(a, b)
	if combined.String() != a.String() {
		t.Errorf("Combine of duplicates = %q, want %q", combined, a)
	}
}

func TestCombineFlattens(t *testing.T) {
	f := Combine(Combine(nameField.Eq("bolt"), qtyField.Gt(1)), qtyField.Lt(100))

	conj, ok := f.(*conjunction[item])
	if !ok {
		t.Fatalf("combined filter is %T, want *conjunction", f)
	}
	if len(conj.children) != 3 {
		t.Errorf("children = %d, want 3 (flattened)", len(conj.children))
	}
	for _, child := range conj.children {
		if _, nested := child.(*conjunction[item]); nested {
			t.Errorf("child %v is a nested conjunction", child)
		}
	}
}

func TestCombineIdentityStable(t *testing.T) {
	ab := Combine(nameField.Eq("bolt"), qtyField.Gt(10))
	ba := Combine(qtyField.Gt(10), nameField.Eq("bolt"))

	if ab.String() != ba.String() {
		t.Errorf("identity depends on combine order: %q vs %q", ab, ba)
	}
}

func TestFieldPredicates(t *testing.T) {
	row := item{Name: "hex bolt", Quantity: 42}

	tests := []struct {
		name string
		f    Filter[item]
		want bool
	}{
		{"eq match", nameField.Eq("hex bolt"), true},
		{"eq miss", nameField.Eq("bolt"), false},
		{"noteq", nameField.NotEq("bolt"), true},
		{"gt", qtyField.Gt(41), true},
		{"gt miss", qtyField.Gt(42), false},
		{"lt", qtyField.Lt(43), true},
		{"contains", nameField.Contains("x bo"), true},
		{"contains miss", nameField.Contains("nut"), false},
		{"prefix", nameField.Prefix("hex"), true},
		{"prefix miss", nameField.Prefix("bolt"), false},
		{"in", qtyField.In(1, 42, 99), true},
		{"in miss", qtyField.In(1, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Matches(row); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFuncFilter(t *testing.T) {
	f := Func("low-stock", func(i item) bool { return i.Quantity < 5 })

	if !f.Matches(item{Quantity: 2}) {
		t.Error("Matches(qty 2) = false, want true")
	}
	if f.Matches(item{Quantity: 10}) {
		t.Error("Matches(qty 10) = true, want false")
	}
	if got := f.String(); got != "func(low-stock)" {
		t.Errorf("String() = %q", got)
	}
}

func TestCompare(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"int lt", 1, 2, -1},
		{"int eq", 3, 3, 0},
		{"mixed numeric", int64(5), 4.0, 1},
		{"string", "a", "b", -1},
		{"time", early, late, -1},
		{"time eq", early, early, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
