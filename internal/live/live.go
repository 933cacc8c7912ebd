// Package live streams inventory change events to dashboard clients over
// WebSocket, so open grids refresh without polling.
package live

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/pkg/module"
)

// Compile-time interface guards.
var (
	_ module.Module       = (*Module)(nil)
	_ module.HTTPProvider = (*Module)(nil)
)

// Module implements the live update module.
type Module struct {
	logger *zap.Logger
	bus    module.EventBus

	mu      sync.Mutex
	clients map[chan module.Event]struct{}
	unsub   func()
}

// New creates the live module.
func New() *Module {
	return &Module{clients: make(map[chan module.Event]struct{})}
}

func (m *Module) Info() module.Info {
	return module.Info{
		Name:         "live",
		Version:      "0.1.0",
		Description:  "WebSocket push of inventory change events",
		Dependencies: []string{"inventory"},
		APIVersion:   module.APIVersionCurrent,
	}
}

func (m *Module) Init(ctx context.Context, deps module.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	return nil
}

// Start subscribes to the bus and begins fanning events out to connected
// clients. Only inventory topics are forwarded.
func (m *Module) Start(ctx context.Context) error {
	m.unsub = m.bus.SubscribeAll(func(_ context.Context, e module.Event) {
		if !strings.HasPrefix(e.Topic, "inventory.") {
			return
		}
		m.broadcast(e)
	})
	m.logger.Info("live module started")
	return nil
}

func (m *Module) Stop(ctx context.Context) error {
	if m.unsub != nil {
		m.unsub()
	}

	m.mu.Lock()
	for ch := range m.clients {
		close(ch)
	}
	m.clients = make(map[chan module.Event]struct{})
	m.mu.Unlock()

	m.logger.Info("live module stopped")
	return nil
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "/ws", Handler: m.handleWS, Streaming: true},
	}
}

// broadcast delivers an event to every connected client, dropping it for
// clients whose buffer is full rather than blocking the bus.
func (m *Module) broadcast(e module.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

func (m *Module) addClient() chan module.Event {
	ch := make(chan module.Event, 16)
	m.mu.Lock()
	m.clients[ch] = struct{}{}
	m.mu.Unlock()
	return ch
}

func (m *Module) removeClient(ch chan module.Event) {
	m.mu.Lock()
	delete(m.clients, ch)
	m.mu.Unlock()
}

// handleWS upgrades the connection and writes events as JSON messages
// until the client disconnects or the module stops.
func (m *Module) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		m.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := m.addClient()
	defer m.removeClient(ch)

	// Reads are discarded; this also surfaces client disconnects.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, e)
			cancel()
			if err != nil {
				m.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
