package module

import "context"

// HTTPProvider is implemented by modules that expose REST API routes.
type HTTPProvider interface {
	Routes() []Route
}

// HealthStatus reports a module's self-assessed health.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// HealthChecker is implemented by modules that report their health status.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}

// Subscription declares one event subscription requested at init.
type Subscription struct {
	Topic   string
	Handler EventHandler
}

// EventSubscriber is implemented by modules that declare event
// subscriptions at init.
type EventSubscriber interface {
	Subscriptions() []Subscription
}

// Validator is implemented by modules that validate their config post-init.
type Validator interface {
	ValidateConfig() error
}
