// Package seed loads the embedded starter inventory into an empty store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/pkg/models"
)

//go:embed items.yaml
var itemsYAML []byte

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	SKU       string  `yaml:"sku"`
	Name      string  `yaml:"name"`
	Category  string  `yaml:"category"`
	Status    string  `yaml:"status"`
	Quantity  int     `yaml:"quantity"`
	UnitPrice float64 `yaml:"unit_price"`
	Archived  bool    `yaml:"archived"`
}

var (
	parseOnce sync.Once
	parsed    []models.Item
	parseErr  error
)

// Items returns the embedded starter items. Parsing happens once; the
// returned slice is a fresh copy each call.
func Items() ([]models.Item, error) {
	parseOnce.Do(func() {
		var f seedFile
		if err := yaml.Unmarshal(itemsYAML, &f); err != nil {
			parseErr = fmt.Errorf("parse embedded seed data: %w", err)
			return
		}
		for _, si := range f.Items {
			parsed = append(parsed, models.Item{
				SKU:       si.SKU,
				Name:      si.Name,
				Category:  models.ItemCategory(si.Category),
				Status:    models.ItemStatus(si.Status),
				Quantity:  si.Quantity,
				UnitPrice: si.UnitPrice,
				Archived:  si.Archived,
			})
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}
	out := make([]models.Item, len(parsed))
	copy(out, parsed)
	return out, nil
}

// Apply inserts the starter items unless a previous run already did; the
// marker lives in core_settings so reseeding survives item deletion.
func Apply(ctx context.Context, items services.ItemRepository, settings services.SettingsRepository, logger *zap.Logger) error {
	if _, err := settings.Get(ctx, "seed.applied"); err == nil {
		return nil
	}

	rows, err := Items()
	if err != nil {
		return err
	}
	for i := range rows {
		if err := items.Create(ctx, &rows[i]); err != nil {
			return fmt.Errorf("seed item %q: %w", rows[i].SKU, err)
		}
	}
	if err := settings.Set(ctx, "seed.applied", "true"); err != nil {
		return fmt.Errorf("record seed marker: %w", err)
	}

	logger.Info("seeded starter inventory", zap.Int("items", len(rows)))
	return nil
}
