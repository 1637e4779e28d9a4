package lyt

import (
	"reflect"
	"runtime"
	"strings"
)

// Method is a route method expression such as (*WidgetRoute).List.
type Method[T any] func(*T, RequestContext) error

// Handle declares method as a handler of route type T, keyed by the
// method's name. Declaring the same name again replaces the earlier
// declaration. Paths are not validated here.
func Handle[T any](method Method[T], info HandlerInfo) {
	HandleNamed(methodName(method), method, info)
}

// HandleNamed is Handle with an explicit key, for closures and method values
// whose names cannot be derived.
func HandleNamed[T any](name string, method Method[T], info HandlerInfo) {
	if method == nil {
		panic("lyt: nil handler for " + reflect.TypeFor[T]().String() + "." + name)
	}

	d := info.normalize()
	d.Name = name
	d.invoke = func(instance any, ctx RequestContext) error {
		return method(instance.(*T), ctx)
	}
	MetadataFor[T]().set(d)
}

// methodName turns "pkg.(*WidgetRoute).List" or "pkg.(*WidgetRoute).List-fm" into "List".
func methodName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
