// Package formatter renders class schemas, instances and class summaries for
// the CLI. Formatters are looked up by name (table, json, yaml).
package formatter

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/artpar/slotkit/core/runtime"
	"github.com/artpar/slotkit/core/schema"
	"github.com/artpar/slotkit/core/validation"
)

// Formatter converts engine data to a specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "table", "json", "yaml").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FormatSchema formats the effective slots of a class.
	FormatSchema(w io.Writer, s SchemaView, opts FormatOptions) error

	// FormatInstance formats the stored values of an instance.
	FormatInstance(w io.Writer, inst InstanceView, opts FormatOptions) error

	// FormatClasses formats a list of class summaries.
	FormatClasses(w io.Writer, classes []ClassSummary, opts FormatOptions) error

	// FormatError formats an error.
	FormatError(w io.Writer, err error) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// NoHeader disables header row for tabular formats.
	NoHeader bool

	// Compact minimizes whitespace (for json).
	Compact bool

	// MaxWidth truncates long values (0 = no limit).
	MaxWidth int
}

// SlotView is the printable form of one effective slot.
type SlotView struct {
	Name      string            `json:"name" yaml:"name"`
	Class     string            `json:"class" yaml:"class"`
	Type      string            `json:"type" yaml:"type"`
	ReadWrite bool              `json:"read_write" yaml:"read_write"`
	Required  bool              `json:"required" yaml:"required"`
	Default   any               `json:"default,omitempty" yaml:"default,omitempty"`
	Computed  bool              `json:"computed_default,omitempty" yaml:"computed_default,omitempty"`
	Forward   map[string]string `json:"forward,omitempty" yaml:"forward,omitempty"`
}

// SchemaView is the printable form of a class schema.
type SchemaView struct {
	Class  string     `json:"class" yaml:"class"`
	Parent string     `json:"parent,omitempty" yaml:"parent,omitempty"`
	Slots  []SlotView `json:"slots" yaml:"slots"`
}

// NewSchemaView converts a resolved schema, keeping slot order.
func NewSchemaView(s *schema.ClassSchema) SchemaView {
	view := SchemaView{
		Class:  s.Class,
		Parent: s.Parent,
		Slots:  make([]SlotView, 0, len(s.Order)),
	}
	for _, slot := range s.Fields() {
		sv := SlotView{
			Name:      slot.Name,
			Class:     slot.Class,
			Type:      validation.Describe(slot.Validator),
			ReadWrite: slot.IsReadWrite(),
			Required:  slot.IsRequired(),
			Forward:   slot.Forward,
		}
		switch {
		case slot.Default.IsFactory():
			sv.Computed = true
		case slot.Default != nil:
			sv.Default = slot.Default.Value
		}
		view.Slots = append(view.Slots, sv)
	}
	return view
}

// InstanceView is the printable form of an instance. Fields lists slot names
// in schema order; Values holds only the slots that are set.
type InstanceView struct {
	Class  string         `json:"class" yaml:"class"`
	Fields []string       `json:"-" yaml:"-"`
	Values map[string]any `json:"values" yaml:"values"`
}

// NewInstanceView converts an instance. Nested instances become nested views.
func NewInstanceView(inst *runtime.Instance) InstanceView {
	values := inst.Values()
	view := InstanceView{
		Class:  inst.ClassName(),
		Fields: append([]string(nil), inst.Class().Schema().Order...),
		Values: make(map[string]any, len(values)),
	}
	for k, v := range values {
		view.Values[k] = plain(v)
	}
	return view
}

func plain(v any) any {
	if inst, ok := v.(*runtime.Instance); ok && inst != nil {
		return NewInstanceView(inst)
	}
	return v
}

// ClassSummary is one row of a class listing.
type ClassSummary struct {
	Class  string `json:"class" yaml:"class"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
	State  string `json:"state" yaml:"state"`
	Slots  int    `json:"slots" yaml:"slots"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	defaultFmt string
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
		defaultFmt: "table",
	}
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}

	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// Default returns the default formatter.
func (r *Registry) Default() Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatters[r.defaultFmt]
}

// SetDefault sets the default formatter.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[name]; !exists {
		return fmt.Errorf("formatter %q not registered", name)
	}

	r.defaultFmt = name
	return nil
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(f Formatter) error {
	return DefaultRegistry.Register(f)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// Default returns the default formatter from the default registry.
func Default() Formatter {
	return DefaultRegistry.Default()
}

// List returns all formatter names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}

func init() {
	for _, f := range []Formatter{NewTableFormatter(), NewJSONFormatter(), NewYAMLFormatter()} {
		if err := Register(f); err != nil {
			panic(err)
		}
	}
}
