package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldenmeer/gridline/pkg/filter"
	"github.com/aldenmeer/gridline/pkg/grid"
	"github.com/aldenmeer/gridline/pkg/models"
	"github.com/aldenmeer/gridline/pkg/module"
)

// ItemRepository provides CRUD access to inventory items. Grid reads go
// through the grid.Source side of SQLiteItemStore instead.
type ItemRepository interface {
	// Get returns a single item by ID.
	Get(ctx context.Context, id string) (*models.Item, error)

	// Create inserts a new item. If item.ID is empty, a UUID is generated.
	// A duplicate SKU returns ErrAlreadyExists.
	Create(ctx context.Context, item *models.Item) error

	// Update modifies an existing item's mutable fields.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes an item by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guards.
var (
	_ ItemRepository           = (*SQLiteItemStore)(nil)
	_ grid.Source[models.Item] = (*SQLiteItemStore)(nil)
)

// SQLiteItemStore implements ItemRepository and grid.Source[models.Item]
// over the inventory_items table. Mutations are announced on the event bus
// when one is attached.
type SQLiteItemStore struct {
	db  *sql.DB
	bus module.EventBus // optional
}

// NewSQLiteItemStore creates an item store. bus may be nil; then mutations
// are silent. The inventory_items table must already exist (created by
// ItemMigrations via the inventory module).
func NewSQLiteItemStore(db *sql.DB, bus module.EventBus) *SQLiteItemStore {
	return &SQLiteItemStore{db: db, bus: bus}
}

// ItemMigrations returns the schema migrations for the inventory_items
// table. The inventory module applies them under its own component name;
// tests apply them directly.
func ItemMigrations() []module.Migration {
	return []module.Migration{
		{
			Version:     1,
			Description: "create inventory_items table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS inventory_items (
						id         TEXT PRIMARY KEY,
						sku        TEXT NOT NULL UNIQUE,
						name       TEXT NOT NULL,
						category   TEXT NOT NULL,
						status     TEXT NOT NULL,
						quantity   INTEGER NOT NULL DEFAULT 0,
						unit_price REAL NOT NULL DEFAULT 0,
						archived   INTEGER NOT NULL DEFAULT 0,
						created_at DATETIME NOT NULL,
						updated_at DATETIME NOT NULL
					)
				`)
				return err
			},
		},
		{
			Version:     2,
			Description: "index items by category and status",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_items_category ON inventory_items (category)`); err != nil {
					return err
				}
				_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_items_status ON inventory_items (status)`)
				return err
			},
		},
	}
}

// itemColumns is the shared column list for item queries.
const itemColumns = `id, sku, name, category, status, quantity, unit_price,
	archived, created_at, updated_at`

// Buffered reports false: every query hits SQLite.
func (s *SQLiteItemStore) Buffered() bool { return false }

// Fetch implements grid.Source. The query filter must be SQL-encodable;
// a func-backed filter returns filter.ErrNoSQL.
func (s *SQLiteItemStore) Fetch(ctx context.Context, q grid.Query[models.Item]) ([]models.Item, error) {
	q = q.Normalize()

	where, args, err := itemWhere(q.Filter)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	args = append(args, limit, q.Offset)

	query := fmt.Sprintf(
		"SELECT %s FROM inventory_items WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		itemColumns, where, itemOrderBy(q.Sort),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Count implements grid.Source.
func (s *SQLiteItemStore) Count(ctx context.Context, f filter.Filter[models.Item]) (int, error) {
	where, args, err := itemWhere(f)
	if err != nil {
		return 0, err
	}

	var total int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inventory_items WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return total, nil
}

// itemWhere renders a filter to a WHERE clause with placeholders. A nil
// filter matches everything.
func itemWhere(f filter.Filter[models.Item]) (string, []any, error) {
	clause, args, err := filter.SQL(f)
	if err != nil {
		return "", nil, err
	}
	if clause == "" {
		clause = "1=1"
	}
	return clause, args, nil
}

// itemOrderBy renders sort criteria to an ORDER BY list. Unknown field
// names are ignored; an empty result falls back to updated_at DESC so
// paging stays deterministic.
func itemOrderBy(sorts []grid.Sort) string {
	var parts []string
	for _, s := range sorts {
		fld, ok := models.ItemField(s.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, fld.Column+" "+dir)
	}
	if len(parts) == 0 {
		return "updated_at DESC"
	}
	return strings.Join(parts, ", ")
}

func (s *SQLiteItemStore) Get(ctx context.Context, id string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item %q: %w", id, err)
	}
	return it, nil
}

func (s *SQLiteItemStore) Create(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.ItemStatusInStock
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (
			id, sku, name, category, status, quantity, unit_price,
			archived, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SKU, item.Name, string(item.Category), string(item.Status),
		item.Quantity, item.UnitPrice, item.Archived, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("sku %q: %w", item.SKU, ErrAlreadyExists)
		}
		return fmt.Errorf("create item: %w", err)
	}

	s.publish(ctx, "inventory.item.created", item)
	return nil
}

func (s *SQLiteItemStore) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items SET
			sku = ?, name = ?, category = ?, status = ?, quantity = ?,
			unit_price = ?, archived = ?, updated_at = ?
		WHERE id = ?`,
		item.SKU, item.Name, string(item.Category), string(item.Status),
		item.Quantity, item.UnitPrice, item.Archived, item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("sku %q: %w", item.SKU, ErrAlreadyExists)
		}
		return fmt.Errorf("update item: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	s.publish(ctx, "inventory.item.updated", item)
	return nil
}

func (s *SQLiteItemStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	s.publish(ctx, "inventory.item.deleted", map[string]string{"id": id})
	return nil
}

func (s *SQLiteItemStore) publish(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.PublishAsync(ctx, module.Event{
		Topic:     topic,
		Source:    "inventory",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// scanItem scans a single *sql.Row into an Item.
func scanItem(row *sql.Row) (*models.Item, error) {
	var it models.Item
	var category, status string
	err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &category, &status,
		&it.Quantity, &it.UnitPrice, &it.Archived, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Category = models.ItemCategory(category)
	it.Status = models.ItemStatus(status)
	return &it, nil
}

// scanItemRow scans a *sql.Rows row into an Item.
func scanItemRow(rows *sql.Rows) (*models.Item, error) {
	var it models.Item
	var category, status string
	err := rows.Scan(
		&it.ID, &it.SKU, &it.Name, &category, &status,
		&it.Quantity, &it.UnitPrice, &it.Archived, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Category = models.ItemCategory(category)
	it.Status = models.ItemStatus(status)
	return &it, nil
}
