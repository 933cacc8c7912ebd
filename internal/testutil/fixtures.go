package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldenmeer/gridline/pkg/models"
)

// NewItem returns an Item with sensible defaults, suitable for test fixtures.
// Override individual fields after creation as needed.
func NewItem(opts ...func(*models.Item)) models.Item {
	it := models.Item{
		ID:        uuid.New().String(),
		SKU:       "SKU-" + uuid.New().String()[:8],
		Name:      "test-item",
		Category:  models.CategoryHardware,
		Status:    models.ItemStatusInStock,
		Quantity:  10,
		UnitPrice: 4.99,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&it)
	}
	return it
}

// WithSKU sets the item SKU.
func WithSKU(sku string) func(*models.Item) {
	return func(it *models.Item) { it.SKU = sku }
}

// WithName sets the item name.
func WithName(name string) func(*models.Item) {
	return func(it *models.Item) { it.Name = name }
}

// WithCategory sets the item category.
func WithCategory(c models.ItemCategory) func(*models.Item) {
	return func(it *models.Item) { it.Category = c }
}

// WithStatus sets the item status.
func WithStatus(s models.ItemStatus) func(*models.Item) {
	return func(it *models.Item) { it.Status = s }
}

// WithQuantity sets the item quantity.
func WithQuantity(n int) func(*models.Item) {
	return func(it *models.Item) { it.Quantity = n }
}

// WithUnitPrice sets the item unit price.
func WithUnitPrice(p float64) func(*models.Item) {
	return func(it *models.Item) { it.UnitPrice = p }
}

// Archived marks the item archived.
func Archived() func(*models.Item) {
	return func(it *models.Item) { it.Archived = true }
}
