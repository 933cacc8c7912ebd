package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldenmeer/gridline/pkg/module"
)

// User represents a dashboard user account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialized to JSON.
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login,omitempty"`
	Disabled     bool      `json:"disabled"`
}

// UserRepository provides access to user accounts.
type UserRepository interface {
	// Get returns a single user by ID.
	Get(ctx context.Context, id string) (*User, error)

	// GetByUsername returns a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new user. If user.ID is empty, a UUID is generated.
	// A duplicate username returns ErrAlreadyExists.
	Create(ctx context.Context, user *User) error

	// UpdateLastLogin stamps the user's last successful login time.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// Compile-time interface guard.
var _ UserRepository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepository implements UserRepository over the auth_users table.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a UserRepository. The auth_users table
// must already exist (created by UserMigrations via the authn module).
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// UserMigrations returns the schema migrations for the auth_users table.
func UserMigrations() []module.Migration {
	return []module.Migration{
		{
			Version:     1,
			Description: "create auth_users table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS auth_users (
						id            TEXT PRIMARY KEY,
						username      TEXT NOT NULL UNIQUE,
						password_hash TEXT NOT NULL,
						role          TEXT NOT NULL DEFAULT 'viewer',
						created_at    DATETIME NOT NULL,
						last_login    DATETIME,
						disabled      INTEGER NOT NULL DEFAULT 0
					)
				`)
				return err
			},
		},
	}
}

// userColumns is the shared SELECT column list for user queries.
const userColumns = `id, username, password_hash, role, created_at, last_login, disabled`

func (r *SQLiteUserRepository) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM auth_users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM auth_users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by username %q: %w", username, err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = "viewer"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_users (id, username, password_hash, role, created_at, disabled)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.Role, user.CreatedAt, user.Disabled,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("username %q: %w", user.Username, ErrAlreadyExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE auth_users SET last_login = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auth_users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// scanUser scans a single *sql.Row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var lastLogin sql.NullTime

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &lastLogin, &u.Disabled)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time
	}
	return &u, nil
}
