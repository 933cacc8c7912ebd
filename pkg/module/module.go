// Package module defines the SDK surface Gridline modules are built
// against: the lifecycle interface, the dependency bundle handed to Init,
// and the shared store/event/config contracts.
package module

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// API version compatibility window for modules.
const (
	// APIVersionCurrent is the module API version this server speaks.
	APIVersionCurrent = 1

	// APIVersionMin is the oldest module API version still accepted.
	APIVersionMin = 1
)

// Info describes a module to the registry.
type Info struct {
	// Name is the module's unique identifier (e.g., "inventory", "authn").
	Name string

	// Version is the module's semantic version.
	Version string

	// Description is a one-line summary shown in the module listing.
	Description string

	// Dependencies lists names of modules that must initialize first.
	Dependencies []string

	// APIVersion is the module API version this module was built against.
	APIVersion int

	// Required marks modules the server cannot run without. A required
	// module failing validation or init aborts startup; optional modules
	// are disabled instead.
	Required bool
}

// Dependencies bundles the shared services the registry hands to each
// module at init time.
type Dependencies struct {
	Logger *zap.Logger
	Config Config
	Store  Store
	Bus    EventBus
}

// Module is the lifecycle interface every Gridline module implements.
type Module interface {
	// Info returns the module's registration metadata.
	Info() Info

	// Init prepares the module with its dependencies. Called once, in
	// dependency order, before Start.
	Init(ctx context.Context, deps Dependencies) error

	// Start begins the module's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the module.
	Stop(ctx context.Context) error
}

// Route represents an HTTP route exposed by a module. Routes are mounted
// under /api/v1/{module}{path}.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc

	// Streaming marks a long-lived route (a websocket). The server keeps
	// the session lock out of its request path so an open stream never
	// blocks the session's other requests.
	Streaming bool
}
