package lyt

import (
	"reflect"
	"strings"
	"sync"
)

// HandlerInfo declares how a route method is exposed. The single and list
// forms of Method and Dependency may be combined; the single form comes first.
type HandlerInfo struct {
	Path         string
	Method       string
	Methods      []string
	Dependency   *Dependency
	Dependencies []Dependency
	ErrorHandler ErrorHandlerFunc
}

// HandlerDescriptor is a normalized HandlerInfo bound to a route method.
type HandlerDescriptor struct {
	Name         string
	Methods      []string // empty matches any method
	Path         Path
	Dependencies []Dependency
	ErrorHandler ErrorHandlerFunc

	invoke func(instance any, ctx RequestContext) error
}

// AnyMethod reports whether the handler matches every HTTP method.
func (d *HandlerDescriptor) AnyMethod() bool {
	return len(d.Methods) == 0
}

func (info HandlerInfo) normalize() *HandlerDescriptor {
	d := &HandlerDescriptor{
		Path:         Path(info.Path),
		ErrorHandler: info.ErrorHandler,
	}

	methods := info.Methods
	if info.Method != "" {
		methods = append([]string{info.Method}, methods...)
	}
	seen := make(map[string]bool, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		if m == MethodAny {
			d.Methods = nil
			break
		}
		seen[m] = true
		d.Methods = append(d.Methods, m)
	}

	if info.Dependency != nil {
		d.Dependencies = append(d.Dependencies, *info.Dependency)
	}
	d.Dependencies = append(d.Dependencies, info.Dependencies...)
	return d
}

// RouteMetadata is the ordered set of handlers declared on a route type.
type RouteMetadata struct {
	mu       sync.Mutex
	names    []string
	handlers map[string]*HandlerDescriptor
}

// Descriptors returns the handlers in the order they were first declared.
func (m *RouteMetadata) Descriptors() []*HandlerDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*HandlerDescriptor, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.handlers[name])
	}
	return out
}

// Lookup returns the handler declared under name
func (m *RouteMetadata) Lookup(name string) (*HandlerDescriptor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.handlers[name]
	return d, ok
}

// Len returns the number of declared handlers
func (m *RouteMetadata) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.names)
}

func (m *RouteMetadata) set(d *HandlerDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.handlers[d.Name]; !exists {
		m.names = append(m.names, d.Name)
	}
	m.handlers[d.Name] = d
}

// metadata is keyed by the route struct type, not a pointer to it.
var metadata = struct {
	sync.Mutex
	byType map[reflect.Type]*RouteMetadata
}{byType: make(map[reflect.Type]*RouteMetadata)}

// MetadataFor returns the handler metadata attached to route type T.
func MetadataFor[T any]() *RouteMetadata {
	return metadataOf(reflect.TypeFor[T]())
}

func metadataOf(t reflect.Type) *RouteMetadata {
	metadata.Lock()
	defer metadata.Unlock()

	m, ok := metadata.byType[t]
	if !ok {
		m = &RouteMetadata{handlers: make(map[string]*HandlerDescriptor)}
		metadata.byType[t] = m
	}
	return m
}
