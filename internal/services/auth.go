package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors returned by AuthService.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyLoggedIn    = errors.New("already logged in")
	ErrUserDisabled       = errors.New("user disabled")
)

// AuthState is the session-scoped authentication state. One instance per
// session, obtained through the session accessor; a zero value means not
// logged in.
type AuthState struct {
	UserID     string
	Username   string
	Role       string
	LoggedInAt time.Time
}

// LoggedIn reports whether the session has an authenticated user.
func (a *AuthState) LoggedIn() bool { return a.UserID != "" }

// AuthService verifies credentials and manages per-session login state.
type AuthService struct {
	users  UserRepository
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("username", username), zap.String("role", user.Role))
	return user, nil
}

// Login verifies credentials and marks the session state logged in. A
// session that is already logged in must log out first.
func (s *AuthService) Login(ctx context.Context, state *AuthState, username, password string) (*User, error) {
	if state.LoggedIn() {
		return nil, ErrAlreadyLoggedIn
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	*state = AuthState{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		LoggedInAt: now,
	}
	s.logger.Info("user logged in", zap.String("username", username))
	return user, nil
}

// Logout clears the session's login state. Safe to call when not logged in.
func (s *AuthService) Logout(state *AuthState) {
	*state = AuthState{}
}
