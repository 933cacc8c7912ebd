package services_test

import (
	"strings"
	"testing"

	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/pkg/grid"
	"github.com/aldenmeer/gridline/pkg/models"
)

func TestGridView_EmptyFilterIsNil(t *testing.T) {
	var v services.GridView
	if v.Filter() != nil {
		t.Fatal("empty view Filter() != nil")
	}
}

func TestGridView_FilterCombinesSetFields(t *testing.T) {
	v := services.GridView{Search: "bolt", Status: "in_stock"}

	f := v.Filter()
	if f == nil {
		t.Fatal("Filter() = nil")
	}

	row := models.Item{Name: "m4 bolt", Status: models.ItemStatusInStock}
	if !f.Matches(row) {
		t.Errorf("filter %s rejected matching row", f)
	}
	row.Status = models.ItemStatusOutOfStock
	if f.Matches(row) {
		t.Errorf("filter %s accepted wrong status", f)
	}

	if s := f.String(); !strings.Contains(s, "name") || !strings.Contains(s, "status") {
		t.Errorf("String() = %q, want both name and status clauses", s)
	}
}

func TestGridView_Query(t *testing.T) {
	v := services.GridView{
		PageSize: 25,
		Sort:     []grid.Sort{{Field: "name"}},
	}

	q := v.Query(2, 0)
	if q.Offset != 50 || q.Limit != 25 {
		t.Errorf("Query(2, 0) offset/limit = %d/%d, want 50/25", q.Offset, q.Limit)
	}
	if len(q.Sort) != 1 || q.Sort[0].Field != "name" {
		t.Errorf("Query Sort = %v", q.Sort)
	}

	q = v.Query(-1, 10)
	if q.Offset != 0 || q.Limit != 10 {
		t.Errorf("Query(-1, 10) offset/limit = %d/%d, want 0/10", q.Offset, q.Limit)
	}
}
