// Package authn is the authentication module: local username/password
// accounts with per-session login state.
package authn

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/pkg/module"
)

// Compile-time interface guards.
var (
	_ module.Module       = (*Module)(nil)
	_ module.HTTPProvider = (*Module)(nil)
)

// Module implements the authn module.
type Module struct {
	logger *zap.Logger
	users  services.UserRepository
	auth   *services.AuthService
}

// New creates the authn module.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() module.Info {
	return module.Info{
		Name:        "authn",
		Version:     "0.1.0",
		Description: "Local account authentication and session login",
		APIVersion:  module.APIVersionCurrent,
		Required:    true,
	}
}

func (m *Module) Init(ctx context.Context, deps module.Dependencies) error {
	m.logger = deps.Logger

	if err := deps.Store.Migrate(ctx, "authn", services.UserMigrations()); err != nil {
		return fmt.Errorf("authn migrations: %w", err)
	}

	m.users = services.NewSQLiteUserRepository(deps.Store.DB())
	m.auth = services.NewAuthService(m.users, m.logger)

	return m.bootstrapAdmin(ctx, deps.Config)
}

// bootstrapAdmin creates the initial admin account on an empty user table
// so a fresh install is reachable.
func (m *Module) bootstrapAdmin(ctx context.Context, cfg module.Config) error {
	n, err := m.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	password := "changeme"
	if cfg != nil && cfg.IsSet("admin_password") {
		password = cfg.GetString("admin_password")
	} else {
		m.logger.Warn("no admin_password configured, using default; change it immediately")
	}

	if _, err := m.auth.Register(ctx, "admin", password, "admin"); err != nil {
		return fmt.Errorf("bootstrap admin account: %w", err)
	}
	m.logger.Info("created initial admin account", zap.String("username", "admin"))
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("authn module started")
	return nil
}

func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("authn module stopped")
	return nil
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "POST", Path: "/login", Handler: m.handleLogin},
		{Method: "POST", Path: "/logout", Handler: m.handleLogout},
		{Method: "GET", Path: "/me", Handler: m.handleMe},
	}
}
