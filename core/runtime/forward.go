package runtime

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Invoker is implemented by values that dispatch named methods themselves.
// Forwarding accessors prefer it over reflection.
type Invoker interface {
	Invoke(method string, args ...any) (any, error)
}

// Method is a callable registered in a MethodTable.
type Method func(args ...any) (any, error)

// MethodTable is an Invoker backed by a table of named functions. It lets
// values that are not Go types with methods (maps, closures, foreign
// handles) be the target of forwarding accessors.
type MethodTable struct {
	mu      sync.RWMutex
	methods map[string]Method
}

// NewMethodTable creates an empty method table.
func NewMethodTable() *MethodTable {
	return &MethodTable{
		methods: make(map[string]Method),
	}
}

// Register adds or replaces a method.
func (t *MethodTable) Register(name string, fn Method) *MethodTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.methods[name] = fn
	return t
}

// Invoke calls a registered method by name.
func (t *MethodTable) Invoke(name string, args ...any) (any, error) {
	t.mu.RLock()
	fn, ok := t.methods[name]
	t.mu.RUnlock()

	if !ok {
		return nil, &usageError{msg: fmt.Sprintf("method %q not registered", name)}
	}

	return fn(args...)
}

// Has checks if a method is registered.
func (t *MethodTable) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.methods[name]
	return ok
}

// List returns all registered method names, sorted.
func (t *MethodTable) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.methods))
	for name := range t.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// usageError marks a dispatch failure caused by how the method was called,
// as opposed to an error the method itself returned.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// absent reports whether v holds no forwarding target: nil, or a nil
// pointer, map, slice, func, chan or interface.
func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// invoke calls method on recv. Invokers dispatch themselves; anything else
// is called through reflection on its exported method set. A trailing error
// result is returned as the error; zero other results yield nil, one yields
// the value, several yield a []any.
func invoke(recv any, method string, args []any) (any, error) {
	if inv, ok := recv.(Invoker); ok {
		return inv.Invoke(method, args...)
	}

	m := reflect.ValueOf(recv).MethodByName(method)
	if !m.IsValid() {
		return nil, &usageError{msg: fmt.Sprintf("value of type %T has no method %q", recv, method)}
	}

	in, err := callArgs(m.Type(), method, args)
	if err != nil {
		return nil, err
	}

	out := m.Call(in)

	if n := len(out); n > 0 && m.Type().Out(n-1) == errorType {
		last := out[n-1]
		out = out[:n-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		results := make([]any, len(out))
		for i, v := range out {
			results[i] = v.Interface()
		}
		return results, nil
	}
}

func callArgs(mt reflect.Type, method string, args []any) ([]reflect.Value, error) {
	fixed := mt.NumIn()
	if mt.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, &usageError{msg: fmt.Sprintf("method %q expects at least %d argument(s)", method, fixed)}
		}
	} else if len(args) != fixed {
		return nil, &usageError{msg: fmt.Sprintf("method %q expects %d argument(s)", method, fixed)}
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if i < fixed {
			pt = mt.In(i)
		} else {
			pt = mt.In(mt.NumIn() - 1).Elem()
		}

		if a == nil {
			switch pt.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
				in[i] = reflect.Zero(pt)
				continue
			default:
				return nil, &usageError{msg: fmt.Sprintf("method %q argument %d: nil is not a %s", method, i+1, pt)}
			}
		}

		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, &usageError{msg: fmt.Sprintf("method %q argument %d: %s is not assignable to %s", method, i+1, av.Type(), pt)}
		}
		in[i] = av
	}

	return in, nil
}
