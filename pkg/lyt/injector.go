package lyt

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/dig"

	lyterrors "github.com/lytical/app/internal/errors"
)

// Injector builds route and middleware values through a dig container.
// Bindings are singletons held by the container; values built by a
// constructor registered with the router are new on every request.
type Injector struct {
	mu        sync.Mutex
	container *dig.Container
	bindings  []binding
	factories []*factory
	sealed    bool
}

type binding struct {
	ctor any
	opts []dig.ProvideOption
}

// NewInjector creates an empty injector
func NewInjector() *Injector {
	return &Injector{container: dig.New()}
}

// Provide registers a constructor binding. See dig.Container.Provide.
func (i *Injector) Provide(ctor any, opts ...dig.ProvideOption) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sealed {
		return lyterrors.DependencyError(fmt.Sprintf("%T", ctor), "injector is finalized")
	}
	if err := i.container.Provide(ctor, opts...); err != nil {
		return lyterrors.WrapDependencyError(fmt.Sprintf("%T", ctor), err)
	}
	i.bindings = append(i.bindings, binding{ctor: ctor, opts: opts})
	return nil
}

// Supply registers ready-made values, each bound to its dynamic type.
func (i *Injector) Supply(values ...any) error {
	for _, v := range values {
		if v == nil {
			return lyterrors.DependencyError("<nil>", "cannot supply a nil value")
		}
		if err := i.Provide(valueProvider(reflect.TypeOf(v), v)); err != nil {
			return err
		}
	}
	return nil
}

// SupplyAs registers value bound to T, typically an interface.
func SupplyAs[T any](i *Injector, value T) error {
	return i.Provide(valueProvider(reflect.TypeFor[T](), value))
}

func valueProvider(t reflect.Type, value any) any {
	fnType := reflect.FuncOf(nil, []reflect.Type{t}, false)
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		rv = reflect.Zero(t)
	}
	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{rv}
	}).Interface()
}

// Invoke runs fn with its parameters resolved from the container.
func (i *Injector) Invoke(fn any) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.container.Invoke(fn)
}

// Instantiate calls ctor with parameters taken from args, in order, when
// assignable and resolved from the container otherwise.
func (i *Injector) Instantiate(ctor any, args ...any) (any, error) {
	f, err := i.factory(ctor, args, nil)
	if err != nil {
		return nil, err
	}
	return f.New()
}

// Sealed reports whether Finalize has run
func (i *Injector) Sealed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sealed
}

// Finalize seals the injector and checks that the container can satisfy
// every route and dependency constructor registered so far. Constructors
// passed to Instantiate are checked when they are called.
func (i *Injector) Finalize() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sealed {
		return nil
	}
	i.sealed = true

	dry := dig.New(dig.DryRun(true))
	for _, b := range i.bindings {
		if err := dry.Provide(b.ctor, b.opts...); err != nil {
			return lyterrors.WrapDependencyError(fmt.Sprintf("%T", b.ctor), err)
		}
	}

	var errs []error
	for _, f := range i.factories {
		if len(f.resolved) == 0 {
			continue
		}
		fn := reflect.MakeFunc(reflect.FuncOf(f.resolved, nil, false), func([]reflect.Value) []reflect.Value {
			return nil
		})
		if err := dry.Invoke(fn.Interface()); err != nil {
			errs = append(errs, lyterrors.WrapDependencyError(f.name, err))
		}
	}
	return errors.Join(errs...)
}

func (i *Injector) resolve(types []reflect.Type) ([]reflect.Value, error) {
	var values []reflect.Value
	fn := reflect.MakeFunc(reflect.FuncOf(types, nil, false), func(in []reflect.Value) []reflect.Value {
		values = append([]reflect.Value(nil), in...)
		return nil
	})

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.container.Invoke(fn.Interface()); err != nil {
		return nil, err
	}
	return values, nil
}

var errorType = reflect.TypeFor[error]()

type slot struct {
	fromArg bool
	index   int
}

// factory is a constructor with its parameter plan worked out once.
type factory struct {
	inj      *Injector
	name     string
	ctor     reflect.Value
	zero     reflect.Type // set when there is no constructor: New returns reflect.New(zero)
	slots    []slot
	args     []reflect.Value
	resolved []reflect.Type
}

func (i *Injector) factory(ctor any, args []any, check func(reflect.Type) error) (*factory, error) {
	v := reflect.ValueOf(ctor)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("constructor must be a non-nil function, got %T", ctor)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic constructor %s is not supported", t)
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("constructor %s must return a value and an optional error", t)
	}
	if check != nil {
		if err := check(t.Out(0)); err != nil {
			return nil, err
		}
	}

	f := &factory{inj: i, name: t.Out(0).String(), ctor: v}
	next := 0
	for j := 0; j < t.NumIn(); j++ {
		p := t.In(j)
		if next < len(args) {
			if av, ok := assignable(args[next], p); ok {
				f.slots = append(f.slots, slot{fromArg: true, index: len(f.args)})
				f.args = append(f.args, av)
				next++
				continue
			}
		}
		f.slots = append(f.slots, slot{index: len(f.resolved)})
		f.resolved = append(f.resolved, p)
	}
	if next < len(args) {
		return nil, fmt.Errorf("argument %d (%T) matches no parameter of %s", next, args[next], t)
	}
	return f, nil
}

// registerFactory builds a factory that Finalize checks against the
// container. Routes and dependencies are registered once, so the list
// stays bounded.
func (i *Injector) registerFactory(ctor any, args []any, check func(reflect.Type) error) (*factory, error) {
	f, err := i.factory(ctor, args, check)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	i.factories = append(i.factories, f)
	i.mu.Unlock()
	return f, nil
}

func (i *Injector) zeroFactory(t reflect.Type) *factory {
	return &factory{inj: i, name: "*" + t.String(), zero: t}
}

// New builds a new value.
func (f *factory) New() (any, error) {
	if f.zero != nil {
		return reflect.New(f.zero).Interface(), nil
	}

	var resolved []reflect.Value
	if len(f.resolved) > 0 {
		var err error
		if resolved, err = f.inj.resolve(f.resolved); err != nil {
			return nil, lyterrors.WrapDependencyError(f.name, err)
		}
	}

	in := make([]reflect.Value, len(f.slots))
	for j, s := range f.slots {
		if s.fromArg {
			in[j] = f.args[s.index]
		} else {
			in[j] = resolved[s.index]
		}
	}

	out := f.ctor.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	if isNil(out[0]) {
		return nil, lyterrors.DependencyError(f.name, "constructor returned nil")
	}
	return out[0].Interface(), nil
}

func assignable(arg any, p reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		if nillable(p.Kind()) {
			return reflect.Zero(p), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(p) {
		return reflect.Value{}, false
	}
	return v, true
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func isNil(v reflect.Value) bool {
	return nillable(v.Kind()) && v.IsNil()
}
