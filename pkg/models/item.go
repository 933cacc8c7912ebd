package models

import (
	"time"

	"github.com/aldenmeer/gridline/pkg/filter"
)

// ItemStatus represents an inventory item's stock state.
type ItemStatus string

const (
	ItemStatusInStock      ItemStatus = "in_stock"
	ItemStatusLowStock     ItemStatus = "low_stock"
	ItemStatusOutOfStock   ItemStatus = "out_of_stock"
	ItemStatusDiscontinued ItemStatus = "discontinued"
)

// ItemCategory groups inventory items for filtering.
type ItemCategory string

const (
	CategoryHardware    ItemCategory = "hardware"
	CategoryElectrical  ItemCategory = "electrical"
	CategoryConsumables ItemCategory = "consumables"
	CategoryTooling     ItemCategory = "tooling"
	CategoryOther       ItemCategory = "other"
)

// Item represents one inventory row shown in the dashboard grid.
type Item struct {
	ID        string       `json:"id"`
	SKU       string       `json:"sku"`
	Name      string       `json:"name"`
	Category  ItemCategory `json:"category"`
	Status    ItemStatus   `json:"status"`
	Quantity  int          `json:"quantity"`
	UnitPrice float64      `json:"unit_price"`
	Archived  bool         `json:"archived"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Filterable and sortable item fields, shared by the SQLite source and
// in-memory sources so both see identical semantics.
var (
	ItemSKU       = filter.Field[Item]{Name: "sku", Column: "sku", Get: func(i Item) any { return i.SKU }}
	ItemName      = filter.Field[Item]{Name: "name", Column: "name", Get: func(i Item) any { return i.Name }}
	ItemCategoryF = filter.Field[Item]{Name: "category", Column: "category", Get: func(i Item) any { return string(i.Category) }}
	ItemStatusF   = filter.Field[Item]{Name: "status", Column: "status", Get: func(i Item) any { return string(i.Status) }}
	ItemQuantity  = filter.Field[Item]{Name: "quantity", Column: "quantity", Get: func(i Item) any { return i.Quantity }}
	ItemUnitPrice = filter.Field[Item]{Name: "unit_price", Column: "unit_price", Get: func(i Item) any { return i.UnitPrice }}
	ItemArchived  = filter.Field[Item]{Name: "archived", Column: "archived", Get: func(i Item) any { return i.Archived }}
	ItemUpdatedAt = filter.Field[Item]{Name: "updated_at", Column: "updated_at", Get: func(i Item) any { return i.UpdatedAt }}
)

// ItemFields lists every grid-facing field in display order.
var ItemFields = []filter.Field[Item]{
	ItemSKU, ItemName, ItemCategoryF, ItemStatusF,
	ItemQuantity, ItemUnitPrice, ItemArchived, ItemUpdatedAt,
}

// ItemField resolves a field by logical name.
func ItemField(name string) (filter.Field[Item], bool) {
	for _, f := range ItemFields {
		if f.Name == name {
			return f, true
		}
	}
	return filter.Field[Item]{}, false
}
