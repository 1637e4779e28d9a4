package lyt

import "sync"

// RouteInfo contains metadata about a registered route
type RouteInfo struct {
	// Method is the HTTP method, or MethodAny
	Method string

	// Path is the route path relative to its route type (e.g., "/{id:int}")
	Path string

	// FullPath is the path as served, including the prefix and base path
	FullPath string

	// HandlerName is the name of the route method
	HandlerName string

	// RouteType is the name of the route struct type
	RouteType string

	// Dependencies names the dependencies run before the handler
	Dependencies []string

	// Guarded is set when the method has no native registration and is
	// matched by comparing the request method
	Guarded bool
}

// RouteRegistry provides access to the routes registered on an application
type RouteRegistry interface {
	// GetAllRoutes returns all registered routes
	GetAllRoutes() []RouteInfo

	// GetRoutesByType returns routes filtered by route type name
	GetRoutesByType(routeType string) []RouteInfo

	// GetRoutesByMethod returns routes filtered by HTTP method
	GetRoutesByMethod(method string) []RouteInfo

	// RegisterRoute adds a route to the registry
	RegisterRoute(route RouteInfo)
}

// InMemoryRouteRegistry implements RouteRegistry using an in-memory slice
type InMemoryRouteRegistry struct {
	mu     sync.RWMutex
	routes []RouteInfo
}

// NewInMemoryRouteRegistry creates a new in-memory route registry
func NewInMemoryRouteRegistry() *InMemoryRouteRegistry {
	return &InMemoryRouteRegistry{
		routes: make([]RouteInfo, 0),
	}
}

// GetAllRoutes returns all registered routes
func (r *InMemoryRouteRegistry) GetAllRoutes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteInfo(nil), r.routes...)
}

// GetRoutesByType returns routes filtered by route type name
func (r *InMemoryRouteRegistry) GetRoutesByType(routeType string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.RouteType == routeType })
}

// GetRoutesByMethod returns routes filtered by HTTP method
func (r *InMemoryRouteRegistry) GetRoutesByMethod(method string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.Method == method })
}

// RegisterRoute adds a route to the registry
func (r *InMemoryRouteRegistry) RegisterRoute(route RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *InMemoryRouteRegistry) filter(keep func(RouteInfo) bool) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []RouteInfo
	for _, route := range r.routes {
		if keep(route) {
			filtered = append(filtered, route)
		}
	}
	return filtered
}
