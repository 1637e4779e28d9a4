// Package lyt registers route types on an HTTP framework through explicit
// handler declarations, builds route and middleware values through a
// dependency injector on every request, and runs a small startup lifecycle
// (create server, starting, listening, started) around the server.
//
// A route type declares its handlers once, usually from init:
//
//	type WidgetRoute struct{ store *Store }
//
//	func NewWidgetRoute(store *Store) *WidgetRoute { return &WidgetRoute{store: store} }
//
//	func (r *WidgetRoute) List(c lyt.RequestContext) error {
//		return c.Response().JSON(http.StatusOK, r.store.All())
//	}
//
//	func init() {
//		lyt.Handle((*WidgetRoute).List, lyt.On("GET /"))
//		lyt.RegisterModule("widgets", func(app *lyt.Application) error {
//			return lyt.RegisterRoute[WidgetRoute](app, lyt.RouteOptions{Path: "/widgets"}, NewWidgetRoute)
//		})
//	}
//
// The server implementation is supplied by the adapters package.
package lyt

// Version is reported in the X-Lyt-Version response header.
const Version = "1.0.0"
