// Package registry is the process-wide store of class declarations. It
// accumulates slot declarations per class, resolves each class against its
// ancestor chain, and finalizes classes into compiled runtime behavior
// exactly once.
//
// The expected lifecycle is a single-threaded declaration phase followed by
// concurrent use. Declaring into one class from several goroutines at once is
// not supported.
package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/artpar/slotkit/core/events"
	"github.com/artpar/slotkit/core/runtime"
	"github.com/artpar/slotkit/core/schema"
	"github.com/artpar/slotkit/core/validation"
	"github.com/artpar/slotkit/ports"
)

// State is the finalization state of a class.
type State int

const (
	// Declaring accepts slot declarations.
	Declaring State = iota
	// Finalized is terminal; the class is compiled and usable.
	Finalized
	// Failed is terminal; finalization failed and the error is kept.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Declaring:
		return "declaring"
	case Finalized:
		return "finalized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DiagnosticsFunc receives the rendered source of a class right before it is
// installed.
type DiagnosticsFunc func(class, source string)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithObserver sets the observer notified of declarations, finalizations,
// constructions and validation failures.
func WithObserver(obs ports.Observer) Option {
	return func(r *Registry) {
		if obs != nil {
			r.observer = obs
		}
	}
}

// WithBus publishes class lifecycle events on bus. Handlers run while the
// registry is locked and must not call back into it.
func WithBus(bus *events.Bus) Option {
	return func(r *Registry) {
		r.bus = bus
	}
}

// WithDiagnostics installs a hook receiving rendered class source.
func WithDiagnostics(fn DiagnosticsFunc) Option {
	return func(r *Registry) {
		r.diagnostics = fn
	}
}

// WithStrictArgs makes construction reject arguments that name no slot.
func WithStrictArgs(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

type entry struct {
	name     string
	parent   string
	declared bool
	source   string

	slots []schema.Slot
	index map[string]int

	state State
	err   error
	class *runtime.Class
}

// Registry holds class declarations and their compiled form.
type Registry struct {
	// mu guards declarations and serializes finalization.
	mu      sync.Mutex
	entries map[string]*entry
	order   []string

	// compiledMu guards compiled, which is read on every construction.
	compiledMu sync.RWMutex
	compiled   map[string]*runtime.Class

	logger      zerolog.Logger
	observer    ports.Observer
	bus         *events.Bus
	diagnostics DiagnosticsFunc
	strict      bool
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries:  make(map[string]*entry),
		compiled: make(map[string]*runtime.Class),
		logger:   zerolog.Nop(),
		observer: ports.NopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, created on first use with no
// options.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
	})
	return defaultReg
}

// Declare registers a class and its direct ancestor. At most one parent is
// accepted. A class may be declared again with the same parent; changing
// the parent, or declaring once finalized, is a configuration error.
func (r *Registry) Declare(class string, parents ...string) error {
	if class == "" {
		return &schema.ConfigurationError{Reason: "class name is empty"}
	}
	if len(parents) > 1 {
		return &schema.ConfigurationError{
			Class:  class,
			Reason: fmt.Sprintf("multiple ancestors are not supported: %s", strings.Join(parents, ", ")),
		}
	}
	parent := ""
	if len(parents) == 1 {
		parent = parents[0]
		if parent == "" {
			return &schema.ConfigurationError{Class: class, Reason: "parent name is empty"}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entryLocked(class)
	if e.state != Declaring {
		return &schema.ConfigurationError{Class: class, Reason: "class is " + e.state.String()}
	}
	if e.declared && e.parent != parent {
		return &schema.ConfigurationError{
			Class:  class,
			Reason: fmt.Sprintf("already declared with parent %q", e.parent),
		}
	}
	e.parent = parent
	e.declared = true
	return nil
}

// Slot declares, or re-declares, a slot on class. The class is created as a
// root class if it does not exist yet. A non-nil validator replaces
// opts.Validator. Re-declaring a name replaces the earlier declaration in
// place.
func (r *Registry) Slot(class, name string, validator validation.Validator, opts schema.Options) error {
	if class == "" {
		return &schema.ConfigurationError{Field: name, Reason: "class name is empty"}
	}
	if !schema.ValidIdentifier(name) {
		return &schema.ConfigurationError{Class: class, Field: name, Reason: "slot name is not a valid identifier"}
	}
	if validator != nil {
		opts.Validator = validator
	}
	opts.Forward = maps.Clone(opts.Forward)

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entryLocked(class)
	if e.state != Declaring {
		return &schema.ConfigurationError{
			Class:  class,
			Field:  name,
			Reason: "cannot declare a slot, class is " + e.state.String(),
		}
	}

	slot := schema.Slot{Name: name, Class: class, Options: opts}
	if i, ok := e.index[name]; ok {
		e.slots[i] = slot
	} else {
		e.index[name] = len(e.slots)
		e.slots = append(e.slots, slot)
	}

	r.logger.Debug().
		Str("class", class).
		Str("field", name).
		Str("slot", slot.Describe()).
		Msg("slot declared")
	return nil
}

// SlotMap is Slot with options given as a mapping. Unrecognized keys are
// rejected before anything is recorded.
func (r *Registry) SlotMap(class, name string, validator validation.Validator, opts map[string]any) error {
	parsed, err := schema.ParseOptions(opts)
	if err != nil {
		return &schema.ConfigurationError{Class: class, Field: name, Reason: "invalid options", Err: err}
	}
	return r.Slot(class, name, validator, parsed)
}

// Resolve returns the merged schema of class. For finalized classes this is
// the cached schema the class was compiled from. While a class is still
// declaring, each call merges the current declarations again; the schema is
// fixed once, when the class is finalized.
func (r *Registry) Resolve(class string) (*schema.ClassSchema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(class, nil)
}

func (r *Registry) resolveLocked(class string, chain []string) (*schema.ClassSchema, error) {
	e, err := r.lookupLocked(class, chain)
	if err != nil {
		return nil, err
	}
	if e.class != nil {
		return e.class.Schema(), nil
	}

	var parent *schema.ClassSchema
	if e.parent != "" {
		parent, err = r.resolveLocked(e.parent, append(chain, class))
		if err != nil {
			return nil, err
		}
	}
	return schema.Inherit(class, parent, e.slots), nil
}

// lookupLocked finds the entry for class, reporting unknown ancestors and
// cycles against the chain that led to it.
func (r *Registry) lookupLocked(class string, chain []string) (*entry, error) {
	for _, seen := range chain {
		if seen == class {
			return nil, &schema.SchemaError{
				Class:  chain[0],
				Chain:  append(append([]string(nil), chain...), class),
				Reason: "cyclic ancestry",
			}
		}
	}

	e, ok := r.entries[class]
	if !ok {
		if len(chain) == 0 {
			return nil, &schema.SchemaError{Class: class, Reason: "class is not declared"}
		}
		return nil, &schema.SchemaError{
			Class:  chain[0],
			Chain:  append(append([]string(nil), chain...), class),
			Reason: fmt.Sprintf("ancestor %q is not declared", class),
		}
	}
	return e, nil
}

// Finalize compiles class and any ancestor not yet finalized. It is a no-op
// for finalized classes and returns the recorded error for failed ones.
func (r *Registry) Finalize(class string) error {
	_, err := r.finalize(class)
	return err
}

func (r *Registry) finalize(class string) (*runtime.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalizeLocked(class, nil)
}

func (r *Registry) finalizeLocked(class string, chain []string) (*runtime.Class, error) {
	e, err := r.lookupLocked(class, chain)
	if err != nil {
		return nil, err
	}

	switch e.state {
	case Finalized:
		return e.class, nil
	case Failed:
		return nil, e.err
	}

	var parent *runtime.Class
	if e.parent != "" {
		parent, err = r.finalizeLocked(e.parent, append(chain, class))
		if err != nil {
			return nil, r.fail(e, err)
		}
	}

	var inherited *schema.ClassSchema
	if parent != nil {
		inherited = parent.Schema()
	}
	s := schema.Inherit(class, inherited, e.slots)

	c, err := runtime.Compile(s, parent, runtime.Options{
		Observer:   r.observer,
		StrictArgs: r.strict,
	})
	if err != nil {
		return nil, r.fail(e, err)
	}

	if r.diagnostics != nil {
		r.diagnostics(class, c.Source())
	}

	e.class = c
	e.state = Finalized
	r.compiledMu.Lock()
	r.compiled[class] = c
	r.compiledMu.Unlock()

	r.logger.Info().
		Str("class", class).
		Str("parent", e.parent).
		Int("slots", len(s.Order)).
		Msg("class finalized")
	r.observer.ClassFinalized(class, len(s.Order), nil)
	r.publish(events.Event{
		Name:   events.ClassFinalized,
		Class:  class,
		Source: e.source,
		Data: map[string]any{
			"parent": e.parent,
			"slots":  append([]string(nil), s.Order...),
		},
	})

	return c, nil
}

// fail moves e to Failed and records err for every later attempt.
func (r *Registry) fail(e *entry, err error) error {
	e.state = Failed
	e.err = err

	r.logger.Error().
		Err(err).
		Str("class", e.name).
		Msg("class finalization failed")
	r.observer.ClassFinalized(e.name, 0, err)
	r.publish(events.Event{
		Name:   events.ClassFailed,
		Class:  e.name,
		Source: e.source,
		Err:    err,
	})
	return err
}

// Checkpoint finalizes every class still declaring, in declaration order,
// ancestors first. It keeps going after a failure and returns all errors.
func (r *Registry) Checkpoint() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.order {
		e := r.entries[name]
		if e.state != Declaring {
			continue
		}
		if _, err := r.finalizeLocked(name, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Class returns the compiled class, finalizing it first if needed.
func (r *Registry) Class(name string) (*runtime.Class, error) {
	r.compiledMu.RLock()
	c, ok := r.compiled[name]
	r.compiledMu.RUnlock()
	if ok {
		return c, nil
	}
	return r.finalize(name)
}

// New constructs an instance of class. The class is finalized synchronously
// on first use.
func (r *Registry) New(class string, args map[string]any) (*runtime.Instance, error) {
	c, err := r.Class(class)
	if err != nil {
		return nil, err
	}
	return c.New(args)
}

// State returns the state of class and whether it is known.
func (r *Registry) State(class string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[class]
	if !ok {
		return Declaring, false
	}
	return e.state, true
}

// Err returns the recorded finalization error of a failed class.
func (r *Registry) Err(class string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[class]; ok {
		return e.err
	}
	return nil
}

// Parent returns the declared parent of class, empty for root classes.
func (r *Registry) Parent(class string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[class]; ok {
		return e.parent
	}
	return ""
}

// Source returns the definition file class was loaded from, if any.
func (r *Registry) Source(class string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[class]; ok {
		return e.source
	}
	return ""
}

// Classes returns every known class name, sorted.
func (r *Registry) Classes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// entryLocked returns the entry for class, creating it if needed.
func (r *Registry) entryLocked(class string) *entry {
	if e, ok := r.entries[class]; ok {
		return e
	}

	e := &entry{
		name:  class,
		index: make(map[string]int),
	}
	r.entries[class] = e
	r.order = append(r.order, class)

	r.logger.Debug().Str("class", class).Msg("class declared")
	r.observer.ClassDeclared(class)
	r.publish(events.Event{Name: events.ClassDeclared, Class: class})
	return e
}

func (r *Registry) publish(event events.Event) {
	if r.bus == nil || !r.bus.HasSubscribers(event.Name) {
		return
	}
	r.bus.Publish(context.Background(), event)
}
