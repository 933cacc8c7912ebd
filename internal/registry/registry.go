// Package registry manages module registration, dependency ordering, and
// lifecycle fan-out.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/pkg/module"
)

// Registry holds registered modules and drives their lifecycle in
// dependency order.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string]module.Module
	order    []string // registration order until Validate, then topological
	disabled map[string]bool
	unsubs   []func() // event subscriptions released on StopAll
	logger   *zap.Logger
}

// New creates an empty Registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		modules:  make(map[string]module.Module),
		disabled: make(map[string]bool),
		logger:   logger,
	}
}

// Register adds a module. Names must be unique and non-empty.
func (r *Registry) Register(m module.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := m.Info()
	if info.Name == "" {
		return fmt.Errorf("module name must not be empty")
	}
	if _, exists := r.modules[info.Name]; exists {
		return fmt.Errorf("module %q already registered", info.Name)
	}

	r.modules[info.Name] = m
	r.order = append(r.order, info.Name)
	r.logger.Info("module registered",
		zap.String("name", info.Name),
		zap.String("version", info.Version))
	return nil
}

// Validate checks API versions and dependencies, disables optional modules
// that cannot run, and re-orders modules topologically so dependencies
// initialize first. Must be called before InitAll.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// API version window.
	for name, m := range r.modules {
		v := m.Info().APIVersion
		if v >= module.APIVersionMin && v <= module.APIVersionCurrent {
			continue
		}
		if m.Info().Required {
			return fmt.Errorf("required module %q has incompatible API version %d (supported %d..%d)",
				name, v, module.APIVersionMin, module.APIVersionCurrent)
		}
		r.disabled[name] = true
		r.logger.Warn("module disabled: incompatible API version",
			zap.String("name", name), zap.Int("api_version", v))
	}

	// Dependency presence. Disabling cascades until stable.
	for changed := true; changed; {
		changed = false
		for name, m := range r.modules {
			if r.disabled[name] {
				continue
			}
			for _, dep := range m.Info().Dependencies {
				if _, ok := r.modules[dep]; ok && !r.disabled[dep] {
					continue
				}
				if m.Info().Required {
					return fmt.Errorf("required module %q depends on unavailable module %q", name, dep)
				}
				r.disabled[name] = true
				changed = true
				r.logger.Warn("module disabled: missing dependency",
					zap.String("name", name), zap.String("dependency", dep))
				break
			}
		}
	}

	order, err := r.topoSort()
	if err != nil {
		return err
	}
	r.order = order
	return nil
}

// topoSort orders module names so dependencies come first. Returns an
// error on cycles. Caller holds the lock.
func (r *Registry) topoSort() ([]string, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(r.modules))
	order := make([]string, 0, len(r.modules))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("module dependency cycle involving %q", name)
		}
		state[name] = visiting
		if m, ok := r.modules[name]; ok {
			for _, dep := range m.Info().Dependencies {
				if _, present := r.modules[dep]; !present {
					continue // already handled by Validate
				}
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	// Visit in registration order for deterministic output.
	for _, name := range r.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// IsDisabled reports whether the named module was disabled during
// validation or init.
func (r *Registry) IsDisabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disabled[name]
}

// InitAll initializes enabled modules in dependency order. depsFor builds
// the dependency bundle for each module (typically a shared bundle with a
// named logger). A required module failing init aborts; optional modules
// are disabled and skipped.
func (r *Registry) InitAll(ctx context.Context, depsFor func(name string) module.Dependencies) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		m := r.modules[name]
		deps := depsFor(name)
		r.logger.Info("initializing module", zap.String("name", name))
		if err := r.initModule(ctx, m, deps); err != nil {
			if m.Info().Required {
				return fmt.Errorf("initialize required module %q: %w", name, err)
			}
			r.disabled[name] = true
			r.logger.Warn("module disabled: init failed",
				zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}

func (r *Registry) initModule(ctx context.Context, m module.Module, deps module.Dependencies) error {
	if err := m.Init(ctx, deps); err != nil {
		return err
	}
	if v, ok := m.(module.Validator); ok {
		if err := v.ValidateConfig(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	}
	if es, ok := m.(module.EventSubscriber); ok && deps.Bus != nil {
		for _, sub := range es.Subscriptions() {
			r.unsubs = append(r.unsubs, deps.Bus.Subscribe(sub.Topic, sub.Handler))
		}
	}
	return nil
}

// StartAll starts enabled modules in dependency order.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		r.logger.Info("starting module", zap.String("name", name))
		if err := r.modules[name].Start(ctx); err != nil {
			return fmt.Errorf("start module %q: %w", name, err)
		}
	}
	return nil
}

// StopAll stops enabled modules in reverse dependency order. Stop errors
// are logged, not returned, so every module gets a shutdown chance.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if r.disabled[name] {
			continue
		}
		r.logger.Info("stopping module", zap.String("name", name))
		if err := r.modules[name].Stop(ctx); err != nil {
			r.logger.Error("module stop failed", zap.String("name", name), zap.Error(err))
		}
	}
}

// Get returns an enabled module by name.
func (r *Registry) Get(name string) (module.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.disabled[name] {
		return nil, false
	}
	m, ok := r.modules[name]
	return m, ok
}

// All returns enabled modules in dependency order.
func (r *Registry) All() []module.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]module.Module, 0, len(r.order))
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		out = append(out, r.modules[name])
	}
	return out
}

// HealthChecks runs the health check of every enabled module implementing
// HealthChecker, keyed by module name.
func (r *Registry) HealthChecks(ctx context.Context) map[string]module.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]module.HealthStatus)
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		if hc, ok := r.modules[name].(module.HealthChecker); ok {
			out[name] = hc.Health(ctx)
		}
	}
	return out
}

// AllRoutes returns the routes of every enabled module implementing
// HTTPProvider, keyed by module name.
func (r *Registry) AllRoutes() map[string][]module.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]module.Route)
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		if hp, ok := r.modules[name].(module.HTTPProvider); ok {
			if mr := hp.Routes(); len(mr) > 0 {
				routes[name] = mr
			}
		}
	}
	return routes
}
