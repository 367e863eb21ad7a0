// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

// Observer receives engine lifecycle notifications. The metrics adapter
// implements it; the engine never depends on a concrete backend.
type Observer interface {
	// ClassDeclared is called when a class first appears in a registry.
	ClassDeclared(class string)

	// ClassFinalized is called once per finalization attempt. err is nil on
	// success.
	ClassFinalized(class string, slots int, err error)

	// InstanceConstructed is called after every construction attempt.
	InstanceConstructed(class string, err error)

	// ValidationFailed is called when a validator rejects a value, at
	// construction or through a write accessor.
	ValidationFailed(class, field string)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) ClassDeclared(string) {}
func (NopObserver) ClassFinalized(string, int, error) {}
func (NopObserver) InstanceConstructed(string, error) {}
func (NopObserver) ValidationFailed(string, string) {}
