package lyt

import (
	"fmt"
	"reflect"
)

// Dependency is a step run before a handler: either a plain middleware
// function or a middleware type built through the injector on every request.
type Dependency struct {
	// Func is a plain middleware function.
	Func MiddlewareFunc

	// Constructor builds a value implementing Middleware. Its parameters are
	// taken from Args when assignable and from the injector otherwise.
	Constructor any
	Args        []any
}

// Use declares a middleware type dependency.
func Use(constructor any, args ...any) Dependency {
	return Dependency{Constructor: constructor, Args: args}
}

// Func declares a plain middleware function dependency.
func Func(mw MiddlewareFunc) Dependency {
	return Dependency{Func: mw}
}

// String names the dependency for logs and route listings.
func (d Dependency) String() string {
	switch {
	case d.Constructor != nil:
		t := reflect.TypeOf(d.Constructor)
		if t.Kind() == reflect.Func && t.NumOut() > 0 {
			return t.Out(0).String()
		}
		return t.String()
	case d.Func != nil:
		if name := methodName(d.Func); name != "" {
			return name
		}
		return "func"
	default:
		return "<empty>"
	}
}

var middlewareType = reflect.TypeFor[Middleware]()

// middleware resolves the dependency into a MiddlewareFunc. Type dependencies
// build a fresh middleware value for every invocation.
func (d Dependency) middleware(inj *Injector) (MiddlewareFunc, error) {
	if d.Func != nil && d.Constructor != nil {
		return nil, fmt.Errorf("dependency declares both a function and a constructor")
	}
	if d.Func != nil {
		return d.Func, nil
	}
	if d.Constructor == nil {
		return nil, fmt.Errorf("empty dependency")
	}

	f, err := inj.registerFactory(d.Constructor, d.Args, func(t reflect.Type) error {
		if !t.Implements(middlewareType) {
			return fmt.Errorf("%s does not implement lyt.Middleware", t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			instance, err := f.New()
			if err != nil {
				return err
			}
			return instance.(Middleware).Handle(next)(ctx)
		}
	}, nil
}
