// Package widgets serves /widgets.
package widgets

import (
	"net/http"
	"strings"

	"github.com/lytical/app/internal/middleware"
	"github.com/lytical/app/internal/services"
	"github.com/lytical/app/pkg/lyt"
)

// Route handles the widget endpoints. Each request gets its own Route.
type Route struct {
	store *services.WidgetStore
}

// NewRoute is resolved by the injector on every request
func NewRoute(store *services.WidgetStore) *Route {
	return &Route{store: store}
}

type createRequest struct {
	Name string `json:"name" form:"name"`
}

// Index greets
func (r *Route) Index(c lyt.RequestContext) error {
	return c.Response().JSON(http.StatusOK, map[string]string{"message": "hi"})
}

// List returns the widgets, at most ?limit= of them when given
func (r *Route) List(c lyt.RequestContext) error {
	items := r.store.List()
	if limit := lyt.QueryOf(c).GetInt("limit", 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return c.Response().JSON(http.StatusOK, items)
}

// Get returns one widget
func (r *Route) Get(c lyt.RequestContext) error {
	id, err := widgetID(c)
	if err != nil {
		return err
	}
	w, ok := r.store.Get(id)
	if !ok {
		return lyt.ErrNotFound("widget not found")
	}
	return c.Response().JSON(http.StatusOK, w)
}

// Create adds a widget
func (r *Route) Create(c lyt.RequestContext) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return lyt.ErrBadRequest("invalid request body").WithInternal(err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return lyt.NewHttpErrorWithDetails(http.StatusBadRequest, "validation failed", map[string]string{"name": "required"})
	}
	return c.Response().JSON(http.StatusCreated, r.store.Create(req.Name))
}

// Delete removes a widget
func (r *Route) Delete(c lyt.RequestContext) error {
	id, err := widgetID(c)
	if err != nil {
		return err
	}
	if !r.store.Delete(id) {
		return lyt.ErrNotFound("widget not found")
	}
	return c.Response().NoContent(http.StatusNoContent)
}

func widgetID(c lyt.RequestContext) (int, error) {
	id, err := lyt.ParamInt(c, "id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, lyt.ErrBadRequest("invalid widget id")
	}
	return id, nil
}

// Module registers Route under /widgets
func Module(app *lyt.Application) error {
	return lyt.RegisterRoute[Route](app, lyt.RouteOptions{Path: "/widgets"}, NewRoute)
}

func init() {
	auth := lyt.Use(middleware.NewAuthMiddleware, "widgets")

	lyt.Handle((*Route).Index, lyt.HandlerInfo{Path: "/", Method: http.MethodGet})
	lyt.Handle((*Route).List, lyt.On("GET /items"))
	lyt.Handle((*Route).Get, lyt.On("GET /items/{id:int}"))
	lyt.Handle((*Route).Create, lyt.On("POST /items", lyt.WithDependencies(auth)))
	lyt.Handle((*Route).Delete, lyt.HandlerInfo{
		Path:       "/items/{id:int}",
		Methods:    []string{http.MethodDelete, "PURGE"},
		Dependency: &auth,
	})

	lyt.RegisterModule("widgets", Module)
}
