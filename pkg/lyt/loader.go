package lyt

import (
	"fmt"
	"log/slog"
	"sync"
)

// Module registers routes on an application. Route packages register a
// Module from init so that importing the package is enough to load it:
//
//	func init() {
//		lyt.RegisterModule("widgets", func(app *lyt.Application) error {
//			return lyt.RegisterRoute[WidgetRoute](app, lyt.RouteOptions{Path: "/widgets"}, NewWidgetRoute)
//		})
//	}
type Module func(app *Application) error

// ModuleRef is a named Module
type ModuleRef struct {
	Name string
	Init Module
}

var modules struct {
	sync.Mutex
	list []ModuleRef
	seen map[string]bool
}

// RegisterModule makes a module available to every application that does
// not use WithModules. It panics if called twice with the same name or
// with a nil module.
func RegisterModule(name string, m Module) {
	modules.Lock()
	defer modules.Unlock()

	if m == nil {
		panic("lyt: RegisterModule module is nil")
	}
	if modules.seen == nil {
		modules.seen = make(map[string]bool)
	}
	if modules.seen[name] {
		panic("lyt: RegisterModule called twice for module " + name)
	}
	modules.seen[name] = true
	modules.list = append(modules.list, ModuleRef{Name: name, Init: m})
}

// Modules returns the names of the registered modules in registration order.
func Modules() []string {
	modules.Lock()
	defer modules.Unlock()

	names := make([]string, 0, len(modules.list))
	for _, m := range modules.list {
		names = append(names, m.Name)
	}
	return names
}

func registeredModules() []ModuleRef {
	modules.Lock()
	defer modules.Unlock()
	return append([]ModuleRef(nil), modules.list...)
}

// Loader runs modules in order and stops at the first failure.
type Loader struct {
	modules []ModuleRef
	logger  *slog.Logger
}

// NewLoader creates a loader for mods. With no arguments it loads the
// modules registered through RegisterModule at the time Load runs.
func NewLoader(logger *slog.Logger, mods ...ModuleRef) *Loader {
	return &Loader{modules: mods, logger: logger}
}

// Load runs every module against app.
func (l *Loader) Load(app *Application) error {
	mods := l.modules
	if mods == nil {
		mods = registeredModules()
	}

	for _, m := range mods {
		l.logger.Debug("loading module", "module", m.Name)
		if err := m.Init(app); err != nil {
			return fmt.Errorf("module %s: %w", m.Name, err)
		}
	}
	l.logger.Info("modules loaded", "count", len(mods))
	return nil
}
