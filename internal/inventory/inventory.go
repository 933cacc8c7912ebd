// Package inventory is the items module: it owns the inventory_items
// schema, seeds starter data, and serves the grid endpoints the dashboard
// binds to.
package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/seed"
	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/pkg/grid"
	"github.com/aldenmeer/gridline/pkg/models"
	"github.com/aldenmeer/gridline/pkg/module"
)

// Compile-time interface guards.
var (
	_ module.Module        = (*Module)(nil)
	_ module.HTTPProvider  = (*Module)(nil)
	_ module.HealthChecker = (*Module)(nil)
)

// Module implements the inventory module.
type Module struct {
	logger *zap.Logger
	store  module.Store
	items  *services.SQLiteItemStore

	// source is what grid requests run against: the item store behind the
	// permanent archived-items filter, with a default name sort appended
	// after whatever the caller asks for.
	source grid.Source[models.Item]

	pageSize int
}

// New creates the inventory module.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() module.Info {
	return module.Info{
		Name:        "inventory",
		Version:     "0.1.0",
		Description: "Inventory item storage and grid endpoints",
		APIVersion:  module.APIVersionCurrent,
		Required:    true,
	}
}

func (m *Module) Init(ctx context.Context, deps module.Dependencies) error {
	m.logger = deps.Logger
	m.store = deps.Store

	if err := m.store.Migrate(ctx, "inventory", services.ItemMigrations()); err != nil {
		return fmt.Errorf("inventory migrations: %w", err)
	}

	m.items = services.NewSQLiteItemStore(m.store.DB(), deps.Bus)

	settings, err := services.NewSQLiteSettingsRepository(ctx, m.store)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, m.items, settings, m.logger); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}

	scoped, err := grid.WithFilter[models.Item](m.items, models.ItemArchived.Eq(false))
	if err != nil {
		return fmt.Errorf("scope item source: %w", err)
	}

	source, err := grid.SortedBy[models.Item](scoped, grid.Sort{Field: "name"})
	if err != nil {
		return fmt.Errorf("order item source: %w", err)
	}
	m.source = source

	m.pageSize = 50
	if deps.Config != nil && deps.Config.IsSet("page_size") {
		m.pageSize = deps.Config.GetInt("page_size")
	}

	m.logger.Info("inventory module initialized", zap.Int("page_size", m.pageSize))
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("inventory module started")
	return nil
}

func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("inventory module stopped")
	return nil
}

// Health reports whether the backing table is reachable.
func (m *Module) Health(ctx context.Context) module.HealthStatus {
	if _, err := m.items.Count(ctx, nil); err != nil {
		return module.HealthStatus{Healthy: false, Detail: err.Error()}
	}
	return module.HealthStatus{Healthy: true}
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "/items", Handler: m.handleListItems},
		{Method: "GET", Path: "/items/{id}", Handler: m.handleGetItem},
		{Method: "GET", Path: "/items/export", Handler: m.handleExportItems},
		{Method: "POST", Path: "/items/import", Handler: m.handleImportItems},
		{Method: "POST", Path: "/items", Handler: m.handleCreateItem},
		{Method: "PUT", Path: "/items/{id}", Handler: m.handleUpdateItem},
		{Method: "DELETE", Path: "/items/{id}", Handler: m.handleDeleteItem},
		{Method: "GET", Path: "/view", Handler: m.handleGetView},
		{Method: "PUT", Path: "/view", Handler: m.handleSetView},
	}
}
