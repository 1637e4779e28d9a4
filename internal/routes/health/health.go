// Package health serves /health for every method.
package health

import (
	"net/http"
	"time"

	"github.com/lytical/app/pkg/lyt"
)

var started = time.Now()

// Route reports liveness
type Route struct{}

// Check answers any method
func (r *Route) Check(c lyt.RequestContext) error {
	if c.Method() == http.MethodHead {
		return c.Response().NoContent(http.StatusOK)
	}
	return c.Response().JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(started).Round(time.Second).String(),
	})
}

// Module registers Route under /health
func Module(app *lyt.Application) error {
	return lyt.RegisterRoute[Route](app, lyt.RouteOptions{Path: "/health"}, nil)
}

func init() {
	lyt.Handle((*Route).Check, lyt.On("* /"))
	lyt.RegisterModule("health", Module)
}
