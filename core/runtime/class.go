// Package runtime compiles a finalized class schema into construction and
// accessor behavior, and provides the instances that behavior produces.
//
// Compilation happens once per class. The result is a Class: an immutable
// set of closures safe for concurrent use.
package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/slotkit/core/schema"
	"github.com/artpar/slotkit/core/validation"
	"github.com/artpar/slotkit/ports"
)

// Level is one step of the ancestor chain: a class and the slots it
// introduced.
type Level struct {
	Class  string
	Fields []string
}

// Class is the compiled behavior of one finalized class.
type Class struct {
	schema    *schema.ClassSchema
	parent    *Class
	levels    []Level
	construct constructor
	accessors map[string]Accessor
	names     []string
	source    string
	observer  ports.Observer
	strict    bool
}

// Options configures compilation.
type Options struct {
	// Observer receives construction and validation notifications.
	Observer ports.Observer

	// StrictArgs rejects construction arguments that name no slot.
	StrictArgs bool
}

// Compile builds the class behavior for a resolved schema. parent must be the
// compiled parent class, or nil for a root class. Compile either returns a
// complete Class or an error; nothing is partially installed.
func Compile(s *schema.ClassSchema, parent *Class, opts Options) (*Class, error) {
	if s == nil {
		return nil, &schema.ConfigurationError{Reason: "nil schema"}
	}
	if (parent == nil) != (s.Parent == "") {
		return nil, &schema.ConfigurationError{Class: s.Class, Reason: "compiled parent does not match schema"}
	}
	if parent != nil && parent.Name() != s.Parent {
		return nil, &schema.ConfigurationError{
			Class:  s.Class,
			Reason: fmt.Sprintf("compiled parent is %q, schema parent is %q", parent.Name(), s.Parent),
		}
	}

	if opts.Observer == nil {
		opts.Observer = ports.NopObserver{}
	}

	c := &Class{
		schema:   s,
		parent:   parent,
		observer: opts.Observer,
		strict:   opts.StrictArgs,
	}

	if parent != nil {
		c.levels = append(c.levels, parent.levels...)
	}
	c.levels = append(c.levels, Level{Class: s.Class, Fields: append([]string(nil), s.Own...)})

	if err := c.checkDefaults(); err != nil {
		return nil, err
	}

	accessors, err := compileAccessors(s, c.observer)
	if err != nil {
		return nil, err
	}
	c.accessors = accessors
	c.names = make([]string, 0, len(accessors))
	for name := range accessors {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	c.construct = compileConstructor(s, c.levels, c.observer)
	c.source = Render(s, c.levels)

	return c, nil
}

// checkDefaults validates every default once. Fixed defaults are checked as
// is; factories are evaluated against an empty probe instance. Both are
// checked against this class's effective validator.
func (c *Class) checkDefaults() error {
	for _, slot := range c.schema.Fields() {
		if slot.Default == nil || slot.Validator == nil {
			continue
		}

		value := slot.Default.Value
		if slot.Default.IsFactory() {
			probe := &builder{class: c.schema.Class, values: map[string]any{}}
			v, err := slot.Default.Factory(probe)
			if err != nil {
				return &schema.ConfigurationError{
					Class:  c.schema.Class,
					Field:  slot.Name,
					Reason: "default factory failed",
					Err:    err,
				}
			}
			value = v
		}

		if !slot.Validator.Check(value) {
			return &schema.ConfigurationError{
				Class:  c.schema.Class,
				Field:  slot.Name,
				Reason: "default does not satisfy the slot type",
				Err: &schema.TypeValidationError{
					Class:    c.schema.Class,
					Field:    slot.Name,
					Value:    value,
					Expected: validation.Describe(slot.Validator),
				},
			}
		}
	}
	return nil
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.schema.Class
}

// Schema returns the resolved schema the class was compiled from.
func (c *Class) Schema() *schema.ClassSchema {
	return c.schema
}

// Parent returns the compiled parent class, or nil.
func (c *Class) Parent() *Class {
	return c.parent
}

// Levels returns the ancestor chain, root first, ending with this class.
func (c *Class) Levels() []Level {
	return append([]Level(nil), c.levels...)
}

// Accessors returns every accessor name, forwarders included, sorted.
func (c *Class) Accessors() []string {
	return append([]string(nil), c.names...)
}

// Source returns the rendered source of the compiled behavior.
func (c *Class) Source() string {
	return c.source
}

// IsA reports whether the class is name or descends from it.
func (c *Class) IsA(name string) bool {
	for k := c; k != nil; k = k.parent {
		if k.Name() == name {
			return true
		}
	}
	return false
}

// New constructs an instance. The instance is only returned if every slot
// was processed successfully.
func (c *Class) New(args map[string]any) (*Instance, error) {
	if c.strict {
		if err := c.checkArgs(args); err != nil {
			c.observer.InstanceConstructed(c.Name(), err)
			return nil, err
		}
	}

	b := &builder{
		class:  c.schema.Class,
		args:   args,
		values: make(map[string]any, len(c.schema.Order)),
	}

	if err := c.construct(b); err != nil {
		c.observer.InstanceConstructed(c.Name(), err)
		return nil, err
	}

	c.observer.InstanceConstructed(c.Name(), nil)
	return &Instance{class: c, values: b.values}, nil
}

func (c *Class) checkArgs(args map[string]any) error {
	var unknown []string
	for name := range args {
		if !c.schema.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &schema.ConfigurationError{
		Class:  c.Name(),
		Field:  unknown[0],
		Reason: fmt.Sprintf("unknown argument(s): %s", strings.Join(unknown, ", ")),
	}
}
