package lyt

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	lyterrors "github.com/lytical/app/internal/errors"
	"github.com/lytical/app/internal/logging"
)

// ServerFactory creates the server used when no hook supplies one
type ServerFactory func() WebServerInterface

var defaultServer struct {
	sync.Mutex
	factory ServerFactory
}

// SetDefaultServer sets the server factory used by applications that are
// not given a server. The adapters package sets it to the echo adapter.
func SetDefaultServer(f ServerFactory) {
	defaultServer.Lock()
	defer defaultServer.Unlock()
	defaultServer.factory = f
}

func newDefaultServer() WebServerInterface {
	defaultServer.Lock()
	defer defaultServer.Unlock()
	if defaultServer.factory == nil {
		return nil
	}
	return defaultServer.factory()
}

// Application owns the server, the root router and the injector of one
// process run, and drives the startup lifecycle.
type Application struct {
	mu       sync.Mutex
	cfg      *Config
	logger   *slog.Logger
	version  string
	injector *Injector
	loader   *Loader
	routes   *InMemoryRouteRegistry

	server      WebServerInterface
	root        RouteGroup
	prefix      string
	middlewares []MiddlewareFunc
	global      []MiddlewareFunc
	frozen      bool

	state    State
	hooks    hooks
	ln       net.Listener
	serveErr chan error
	done     chan struct{}
}

// Option configures an Application
type Option func(*Application)

// WithConfig sets the configuration. The default is DefaultConfig().
func WithConfig(cfg *Config) Option {
	return func(a *Application) { a.cfg = cfg }
}

// WithLogger sets the logger. The default is built from the logging config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.logger = logger }
}

// WithInjector sets the injector used for routes and middleware.
func WithInjector(inj *Injector) Option {
	return func(a *Application) { a.injector = inj }
}

// WithVersion sets the X-Lyt-Version response header value.
func WithVersion(version string) Option {
	return func(a *Application) { a.version = version }
}

// WithServer sets the initial server; OnCreateServer hooks may still replace it.
func WithServer(server WebServerInterface) Option {
	return func(a *Application) { a.server = server }
}

// WithModules loads exactly mods instead of the modules registered
// through RegisterModule.
func WithModules(mods ...ModuleRef) Option {
	return func(a *Application) {
		if mods == nil {
			mods = []ModuleRef{}
		}
		a.loader = &Loader{modules: mods}
	}
}

// NewApplication creates an idle application.
func NewApplication(opts ...Option) *Application {
	a := &Application{
		version: Version,
		routes:  NewInMemoryRouteRegistry(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cfg == nil {
		a.cfg = DefaultConfig()
	}
	if a.logger == nil {
		a.logger = logging.New(&a.cfg.Logging)
	}
	if a.injector == nil {
		a.injector = NewInjector()
	}
	if a.loader == nil {
		a.loader = NewLoader(a.logger)
	}
	if a.loader.logger == nil {
		a.loader.logger = a.logger
	}
	a.prefix = a.cfg.Prefix
	return a
}

// Config returns the application configuration
func (a *Application) Config() *Config { return a.cfg }

// Logger returns the application logger
func (a *Application) Logger() *slog.Logger { return a.logger }

// Injector returns the injector used to build routes and middleware
func (a *Application) Injector() *Injector { return a.injector }

// Routes returns the registry of mounted routes
func (a *Application) Routes() RouteRegistry { return a.routes }

// Version returns the version reported in X-Lyt-Version
func (a *Application) Version() string { return a.version }

// State returns the current lifecycle state
func (a *Application) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Server returns the server once it has been created, nil before.
func (a *Application) Server() WebServerInterface {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state < StateMounting {
		return nil
	}
	return a.server
}

// Router returns the root router mounted at the prefix, nil before mounting.
func (a *Application) Router() RouteGroup {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root
}

// Addr returns the bound listener address, or "" before listening.
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln == nil {
		return ""
	}
	return a.ln.Addr().String()
}

// Start runs the lifecycle up to the started state. Serving continues in
// the background until Stop.
func (a *Application) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateIdle {
		a.mu.Unlock()
		return lyterrors.StartupError("start", "application has already been started")
	}
	a.state = StateCreating
	a.mu.Unlock()

	// create_server
	sc := &ServerConfig{App: a, Prefix: a.prefix, Server: a.server, Injector: a.injector}
	for _, h := range a.takeCreateServer() {
		if err := h(ctx, sc); err != nil {
			return a.fail(StateCreating, err)
		}
	}
	if err := sc.wait(ctx); err != nil {
		return a.fail(StateCreating, err)
	}

	// mount
	server := sc.Server
	if server == nil {
		server = newDefaultServer()
	}
	if server == nil {
		return a.fail(StateMounting, errors.New("no server: set ServerConfig.Server or import the adapters package"))
	}
	prefix := sc.Prefix
	if prefix == "" {
		prefix = "/"
	}
	server.Use(a.dispatch)
	root := server.RegisterGroup(prefix)

	a.mu.Lock()
	a.state = StateMounting
	a.server = server
	a.prefix = prefix
	a.root = root
	a.middlewares = append(a.middlewares, sc.middlewares...)
	a.mu.Unlock()
	a.logger.Info("server created", "server", server.Name(), "prefix", prefix)

	// discover
	a.setState(StateDiscovering)
	if err := a.loader.Load(a); err != nil {
		return a.fail(StateDiscovering, err)
	}

	// server_starting
	a.setState(StateStarting)
	lc := &ListenConfig{
		Hostname: a.cfg.Hostname,
		Port:     a.cfg.Port,
		Backlog:  a.cfg.Backlog,
		Server:   server,
	}
	for _, h := range a.takeServerStarting() {
		if err := h(ctx, lc); err != nil {
			return a.fail(StateStarting, err)
		}
	}
	if err := lc.wait(ctx); err != nil {
		return a.fail(StateStarting, err)
	}

	// listen
	if err := a.injector.Finalize(); err != nil {
		return a.fail(StateStarting, err)
	}
	ln, err := listen(ctx, lc.Hostname, lc.Port, lc.Backlog)
	if err != nil {
		return a.fail(StateListening, err)
	}

	a.mu.Lock()
	a.middlewares = append(a.middlewares, lc.middlewares...)
	a.global = append([]MiddlewareFunc{DefaultHeaders(a.version)}, a.middlewares...)
	a.frozen = true
	a.ln = ln
	a.serveErr = make(chan error, 1)
	a.state = StateListening
	a.mu.Unlock()

	go a.serve(server, ln)

	// server_started fires without waiting for server_listening
	a.setState(StateStarted)
	for _, h := range a.takeServerStarted() {
		h()
	}
	a.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

func (a *Application) serve(server WebServerInterface, ln net.Listener) {
	defer close(a.done)

	for _, h := range a.takeServerListening() {
		h(ln.Addr())
	}
	a.logger.Info("server listening", "addr", ln.Addr().String(), "server", server.Name())

	if err := server.Serve(ln); err != nil && a.State() != StateStopped {
		a.logger.Error("server stopped with error", "error", err)
		a.serveErr <- err
	}
}

// Stop shuts the server down and waits for the serving goroutine to exit.
func (a *Application) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.state < StateListening || a.state == StateStopped {
		a.state = StateStopped
		a.mu.Unlock()
		return nil
	}
	a.state = StateStopped
	server, ln := a.server, a.ln
	a.mu.Unlock()

	a.logger.Info("stopping server")
	err := server.Stop(ctx)
	// a server stopped before it began serving may still hold ln
	ln.Close()
	if err != nil {
		return err
	}
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the server has stopped serving.
func (a *Application) Done() <-chan struct{} {
	return a.done
}

// Run starts the application and serves until ctx is cancelled or the
// server fails, then stops it within the configured shutdown timeout.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-a.serveErr:
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := a.Stop(stopCtx); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}

func (a *Application) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	a.logger.Debug("lifecycle", "state", s.String())
}

func (a *Application) fail(stage State, err error) error {
	a.logger.Error("startup failed", "stage", stage.String(), "error", err)
	return lyterrors.WrapStartupError(stage.String(), err)
}

// dispatch is installed once as the server's global middleware so that
// middleware added by lifecycle hooks applies to every route.
func (a *Application) dispatch(next HandlerFunc) HandlerFunc {
	return func(ctx RequestContext) error {
		return Chain(next, a.global...)(ctx)
	}
}

func (a *Application) routeGroup(path string) (RouteGroup, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.root == nil {
		return nil, errors.New("the root router is not mounted; register routes from a module")
	}
	if a.frozen {
		return nil, errors.New("routes cannot be added once the server is listening")
	}
	if path == "" || path == "/" {
		return a.root, nil
	}
	return a.root.Group(path), nil
}
