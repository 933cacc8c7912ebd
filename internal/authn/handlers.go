package authn

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/server"
	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type meResponse struct {
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid login payload: "+err.Error(), r.URL.Path)
		return
	}
	if req.Username == "" || req.Password == "" {
		server.BadRequest(w, "username and password are required", r.URL.Path)
		return
	}

	sess := session.FromContext(r.Context())
	state := session.Get[services.AuthState](sess)

	user, err := m.auth.Login(r.Context(), state, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyLoggedIn):
			server.Conflict(w, "session already logged in; log out first", r.URL.Path)
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserDisabled):
			server.Unauthorized(w, "invalid credentials", r.URL.Path)
		default:
			m.logger.Error("login failed", zap.Error(err))
			server.InternalError(w, "login failed", r.URL.Path)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meResponse{
		Username:   user.Username,
		Role:       user.Role,
		LoggedInAt: state.LoggedInAt,
	})
}

func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	m.auth.Logout(session.Get[services.AuthState](sess))
	sess.Reset()
	session.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (m *Module) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	state := session.Get[services.AuthState](sess)
	if !state.LoggedIn() {
		server.Unauthorized(w, "not logged in", r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meResponse{
		Username:   state.Username,
		Role:       state.Role,
		LoggedInAt: state.LoggedInAt,
	})
}
