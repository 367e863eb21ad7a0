package runtime

import (
	"fmt"
	"sync"

	"github.com/artpar/slotkit/core/schema"
)

// Instance is an object built by a compiled class: a mapping from slot name
// to value. Slots without a value are absent, not nil.
type Instance struct {
	class *Class

	mu     sync.RWMutex
	values map[string]any
}

// Class returns the compiled class that built the instance.
func (i *Instance) Class() *Class {
	return i.class
}

// ClassName returns the name of the instance's class.
func (i *Instance) ClassName() string {
	return i.class.Name()
}

// IsA reports whether the instance's class is name or descends from it.
func (i *Instance) IsA(name string) bool {
	return i.class.IsA(name)
}

// Lookup reads stored state directly, bypassing accessors.
func (i *Instance) Lookup(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.values[name]
	return v, ok
}

// Has reports whether a value is stored for the slot.
func (i *Instance) Has(name string) bool {
	_, ok := i.Lookup(name)
	return ok
}

// Values returns a copy of the stored values.
func (i *Instance) Values() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}

// Call invokes the accessor registered under name.
func (i *Instance) Call(name string, args ...any) (any, error) {
	acc, ok := i.class.accessors[name]
	if !ok {
		return nil, &schema.AccessorUsageError{
			Class:  i.class.Name(),
			Field:  name,
			Args:   len(args),
			Reason: "no such accessor",
		}
	}
	return acc(i, args...)
}

// Invoke makes instances usable as forwarding targets of other instances.
func (i *Instance) Invoke(method string, args ...any) (any, error) {
	return i.Call(method, args...)
}

// Get reads a slot through its accessor.
func (i *Instance) Get(name string) (any, error) {
	return i.Call(name)
}

// Set writes a slot through its accessor. Read-only slots reject it.
func (i *Instance) Set(name string, value any) (any, error) {
	return i.Call(name, value)
}

// String renders the instance for logs and the CLI.
func (i *Instance) String() string {
	return fmt.Sprintf("%s%v", i.class.Name(), i.Values())
}

func (i *Instance) store(name string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.values[name] = value
}
