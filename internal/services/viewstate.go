package services

import (
	"github.com/aldenmeer/gridline/pkg/filter"
	"github.com/aldenmeer/gridline/pkg/grid"
	"github.com/aldenmeer/gridline/pkg/models"
)

// GridView is the session-scoped grid configuration: the search text,
// column filters, and sort order one user has set on the items grid. One
// instance per session, obtained through the session accessor.
type GridView struct {
	Search   string
	Category string
	Status   string
	Sort     []grid.Sort
	PageSize int
}

// Filter renders the view's column filters as a single conjunction. An
// unset view returns nil (no constraint beyond what wrappers impose).
func (v *GridView) Filter() filter.Filter[models.Item] {
	var f filter.Filter[models.Item]
	if v.Search != "" {
		f = filter.Combine(f, models.ItemName.Contains(v.Search))
	}
	if v.Category != "" {
		f = filter.Combine(f, models.ItemCategoryF.Eq(v.Category))
	}
	if v.Status != "" {
		f = filter.Combine(f, models.ItemStatusF.Eq(v.Status))
	}
	return f
}

// Query builds the fetch query for one page of the view. A non-positive
// pageSize falls back to the view's own page size.
func (v *GridView) Query(page, pageSize int) grid.Query[models.Item] {
	if pageSize <= 0 {
		pageSize = v.PageSize
	}
	if page < 0 {
		page = 0
	}
	return grid.Query[models.Item]{
		Offset: page * pageSize,
		Limit:  pageSize,
		Sort:   v.Sort,
		Filter: v.Filter(),
	}
}
