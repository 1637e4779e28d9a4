package lyt

import (
	"fmt"
	"reflect"
	"slices"

	lyterrors "github.com/lytical/app/internal/errors"
)

// RouteOptions configures the registration of a route type
type RouteOptions struct {
	// Path is the base path of the route type under the root router
	Path string

	// Args are extra constructor arguments, matched to constructor
	// parameters in order. Remaining parameters come from the injector.
	Args []any
}

// RegisterRoute mounts every handler declared on T under opts.Path.
//
// ctor must be a function returning *T, optionally followed by an error.
// A nil ctor builds new(T). Each request is served by a new *T.
func RegisterRoute[T any](app *Application, opts RouteOptions, ctor any) error {
	rt := reflect.TypeFor[T]()
	name := rt.String()

	var f *factory
	if ctor == nil {
		if len(opts.Args) > 0 {
			return lyterrors.RegistrationError("route", name, "constructor arguments given without a constructor")
		}
		f = app.injector.zeroFactory(rt)
	} else {
		var err error
		f, err = app.injector.registerFactory(ctor, opts.Args, func(t reflect.Type) error {
			if t != reflect.PointerTo(rt) {
				return fmt.Errorf("constructor must return *%s, not %s", name, t)
			}
			return nil
		})
		if err != nil {
			return lyterrors.RegistrationError("route", name, err.Error())
		}
	}

	group, err := app.routeGroup(opts.Path)
	if err != nil {
		return lyterrors.RegistrationError("route", name, err.Error())
	}

	descriptors := metadataOf(rt).Descriptors()
	for _, d := range descriptors {
		if err := app.mountHandler(group, name, opts.Path, f, d); err != nil {
			return err
		}
	}

	app.logger.Debug("registered route", "type", name, "path", opts.Path, "handlers", len(descriptors))
	return nil
}

func (a *Application) mountHandler(group RouteGroup, routeType, base string, f *factory, d *HandlerDescriptor) error {
	target := func(ctx RequestContext) error {
		instance, err := f.New()
		if err != nil {
			return err
		}
		return d.invoke(instance, ctx)
	}

	middlewares := make([]MiddlewareFunc, 0, len(d.Dependencies))
	names := make([]string, 0, len(d.Dependencies))
	for i, dep := range d.Dependencies {
		mw, err := dep.middleware(a.injector)
		if err != nil {
			return lyterrors.RegistrationError("handler", routeType+"."+d.Name, fmt.Sprintf("dependency %d: %v", i, err))
		}
		middlewares = append(middlewares, mw)
		names = append(names, dep.String())
	}

	h := Chain(target, middlewares...)
	if d.ErrorHandler != nil {
		h = withErrorHandler(h, d.ErrorHandler)
	}

	record := func(method string, guarded bool) {
		a.routes.RegisterRoute(RouteInfo{
			Method:       method,
			Path:         d.Path.Raw(),
			FullPath:     JoinPaths(a.prefix, base, d.Path.Raw()),
			HandlerName:  d.Name,
			RouteType:    routeType,
			Dependencies: names,
			Guarded:      guarded,
		})
	}

	if d.AnyMethod() {
		group.RegisterRoute(MethodAny, d.Path, h)
		record(MethodAny, false)
		return nil
	}

	var guarded []string
	for _, m := range d.Methods {
		if supportsMethod(a.server, m) {
			group.RegisterRoute(m, d.Path, h)
			record(m, false)
			continue
		}
		guarded = append(guarded, m)
	}
	if len(guarded) > 0 {
		group.RegisterRoute(MethodAny, d.Path, methodGuard(guarded, h))
		for _, m := range guarded {
			record(m, true)
		}
	}
	return nil
}

// methodGuard runs h only for the given methods. Other methods return
// ErrNextRoute so that routes registered later on the same path still match.
func methodGuard(methods []string, h HandlerFunc) HandlerFunc {
	return func(ctx RequestContext) error {
		if slices.Contains(methods, ctx.Method()) {
			return h(ctx)
		}
		return ErrNextRoute
	}
}

func withErrorHandler(h HandlerFunc, handle ErrorHandlerFunc) HandlerFunc {
	return func(ctx RequestContext) error {
		if err := h(ctx); err != nil {
			return handle(err, ctx)
		}
		return nil
	}
}
