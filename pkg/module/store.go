package module

import (
	"context"
	"database/sql"
)

// Migration is a single schema change owned by one component.
// Migrations run inside a transaction and are tracked so they apply once.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Store is the shared persistence contract modules receive at init.
type Store interface {
	// DB returns the underlying *sql.DB for direct queries.
	DB() *sql.DB

	// Tx executes fn within a transaction, committing when fn returns nil.
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error

	// Migrate runs pending migrations for the named component.
	Migrate(ctx context.Context, component string, migrations []Migration) error

	// Close closes the underlying database connection.
	Close() error
}
