package lyt

import (
	"context"
	"net"

	"golang.org/x/sync/errgroup"
)

// State is a stage of the application lifecycle. States only move forward.
type State int

const (
	StateIdle State = iota
	StateCreating
	StateMounting
	StateDiscovering
	StateStarting
	StateListening
	StateStarted
	StateStopped
)

var stateNames = [...]string{"idle", "creating", "mounting", "discovering", "starting", "listening", "started", "stopped"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// PendingOp is asynchronous setup a lifecycle stage waits for.
type PendingOp func(ctx context.Context) error

// waitList holds the pending operations of one stage. They run
// concurrently and the stage fails with the first error.
type waitList struct {
	ops []PendingOp
}

// WaitFor delays the next lifecycle stage until op returns.
func (w *waitList) WaitFor(op PendingOp) {
	if op != nil {
		w.ops = append(w.ops, op)
	}
}

// Pending returns the number of queued operations
func (w *waitList) Pending() int {
	return len(w.ops)
}

func (w *waitList) wait(ctx context.Context) error {
	if len(w.ops) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, op := range w.ops {
		g.Go(func() error {
			return op(gctx)
		})
	}
	err := g.Wait()
	w.ops = nil
	return err
}

// ServerConfig is passed to OnCreateServer hooks. Hooks may replace the
// server, change the mount prefix, add bindings to the injector, add
// global middleware or queue pending work.
type ServerConfig struct {
	App      *Application
	Prefix   string
	Server   WebServerInterface
	Injector *Injector

	waitList
	middlewares []MiddlewareFunc
}

// Use adds global middleware, run after the default headers.
func (c *ServerConfig) Use(middleware ...MiddlewareFunc) {
	c.middlewares = append(c.middlewares, middleware...)
}

// ListenConfig is passed to OnServerStarting hooks.
type ListenConfig struct {
	Hostname string
	Port     int
	Backlog  int
	Server   WebServerInterface

	waitList
	middlewares []MiddlewareFunc
}

// Use adds global middleware after everything added at server creation.
// Error handling middleware is usually added here.
func (c *ListenConfig) Use(middleware ...MiddlewareFunc) {
	c.middlewares = append(c.middlewares, middleware...)
}

// Hook signatures, one per lifecycle event.
type (
	CreateServerHook    func(ctx context.Context, cfg *ServerConfig) error
	ServerStartingHook  func(ctx context.Context, cfg *ListenConfig) error
	ServerListeningHook func(addr net.Addr)
	ServerStartedHook   func()
)

// hooks are one-shot: each slot is cleared when its event fires.
type hooks struct {
	createServer    []CreateServerHook
	serverStarting  []ServerStartingHook
	serverListening []ServerListeningHook
	serverStarted   []ServerStartedHook
}

// OnCreateServer registers a hook run when the server is about to be created.
func (a *Application) OnCreateServer(h CreateServerHook) {
	a.addHook(StateCreating, "create_server", func() { a.hooks.createServer = append(a.hooks.createServer, h) })
}

// OnServerStarting registers a hook run after route discovery, before listening.
func (a *Application) OnServerStarting(h ServerStartingHook) {
	a.addHook(StateStarting, "server_starting", func() { a.hooks.serverStarting = append(a.hooks.serverStarting, h) })
}

// OnServerListening registers a hook run from the serving goroutine once
// the listener is bound.
func (a *Application) OnServerListening(h ServerListeningHook) {
	a.addHook(StateListening, "server_listening", func() { a.hooks.serverListening = append(a.hooks.serverListening, h) })
}

// OnServerStarted registers a hook run when Start returns successfully.
// It does not wait for OnServerListening hooks.
func (a *Application) OnServerStarted(h ServerStartedHook) {
	a.addHook(StateStarted, "server_started", func() { a.hooks.serverStarted = append(a.hooks.serverStarted, h) })
}

func (a *Application) addHook(fires State, event string, add func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state >= fires {
		a.logger.Warn("lifecycle event already fired, hook dropped", "event", event)
		return
	}
	add()
}

func (a *Application) takeCreateServer() []CreateServerHook {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.hooks.createServer
	a.hooks.createServer = nil
	return h
}

func (a *Application) takeServerStarting() []ServerStartingHook {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.hooks.serverStarting
	a.hooks.serverStarting = nil
	return h
}

func (a *Application) takeServerListening() []ServerListeningHook {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.hooks.serverListening
	a.hooks.serverListening = nil
	return h
}

func (a *Application) takeServerStarted() []ServerStartedHook {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.hooks.serverStarted
	a.hooks.serverStarted = nil
	return h
}
