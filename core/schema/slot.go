package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/slotkit/core/validation"
)

// InstanceView is the read side of an instance under construction, handed to
// default factories.
type InstanceView interface {
	// ClassName returns the name of the class being constructed.
	ClassName() string

	// Lookup returns the value stored for a slot so far.
	Lookup(name string) (any, bool)
}

// Factory computes a default value per instance.
type Factory func(inst InstanceView) (any, error)

// Default is a slot default: a fixed value or a per-instance factory.
type Default struct {
	Value   any
	Factory Factory
}

// IsFactory reports whether the default is computed per instance.
func (d *Default) IsFactory() bool {
	return d != nil && d.Factory != nil
}

// Fixed returns a default holding a fixed value.
func Fixed(v any) *Default {
	return &Default{Value: v}
}

// Computed returns a default evaluated per instance.
func Computed(fn Factory) *Default {
	return &Default{Factory: fn}
}

// Options holds the declared options of one slot. A nil field means the
// option was not set by the declaring class and is inherited when merging.
type Options struct {
	// Validator restricts accepted values.
	Validator validation.Validator

	// ReadWrite makes the slot writable after construction.
	ReadWrite *bool

	// Required makes construction fail without a value, unless a default exists.
	Required *bool

	// Default supplies a value when construction does not.
	Default *Default

	// Forward maps new accessor names to methods invoked on the stored value.
	Forward map[string]string
}

// Bool returns a pointer to b, for Options literals.
func Bool(b bool) *bool {
	return &b
}

// Option keys accepted by ParseOptions.
const (
	OptReadWrite = "read_write"
	OptRW        = "rw"
	OptRequired  = "required"
	OptDefault   = "default"
	OptForward   = "forward"
)

// ParseOptions converts an option mapping into Options. Unrecognized keys and
// values of the wrong shape are rejected immediately. A default that is a
// func() any or a Factory becomes a computed default.
func ParseOptions(opts map[string]any) (Options, error) {
	var o Options

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := opts[k]
		switch k {
		case OptReadWrite, OptRW:
			b, ok := v.(bool)
			if !ok {
				return Options{}, fmt.Errorf("option %q must be a boolean, got %T", k, v)
			}
			o.ReadWrite = Bool(b)
		case OptRequired:
			b, ok := v.(bool)
			if !ok {
				return Options{}, fmt.Errorf("option %q must be a boolean, got %T", k, v)
			}
			o.Required = Bool(b)
		case OptDefault:
			switch fn := v.(type) {
			case Factory:
				o.Default = Computed(fn)
			case func(InstanceView) (any, error):
				o.Default = Computed(fn)
			case func() any:
				o.Default = Computed(func(InstanceView) (any, error) { return fn(), nil })
			case *Default:
				o.Default = fn
			default:
				o.Default = Fixed(v)
			}
		case OptForward:
			fwd, err := parseForward(v)
			if err != nil {
				return Options{}, err
			}
			o.Forward = fwd
		default:
			return Options{}, fmt.Errorf("unrecognized option %q", k)
		}
	}

	return o, nil
}

func parseForward(v any) (map[string]string, error) {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, target := range m {
			out[k] = target
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, target := range m {
			s, ok := target.(string)
			if !ok {
				return nil, fmt.Errorf("forward %q: target must be a method name, got %T", k, target)
			}
			out[k] = s
		}
		return out, nil
	case []string:
		// A list forwards each method under its own name.
		out := make(map[string]string, len(m))
		for _, name := range m {
			out[name] = name
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option %q must be a mapping of accessor to method, got %T", OptForward, v)
	}
}

// Slot is one slot declaration, or the effective merged slot of a class.
type Slot struct {
	// Name of the slot.
	Name string

	// Class is the class whose declaration last contributed to this slot.
	Class string

	Options
}

// IsReadWrite returns whether the slot accepts writes after construction.
// Slots are read-only unless declared otherwise.
func (s Slot) IsReadWrite() bool {
	return s.ReadWrite != nil && *s.ReadWrite
}

// IsRequired returns whether construction must supply a value.
func (s Slot) IsRequired() bool {
	return s.Required != nil && *s.Required
}

// HasDefault returns whether a default is set.
func (s Slot) HasDefault() bool {
	return s.Default != nil
}

// ForwardNames returns the forwarding accessor names in sorted order.
func (s Slot) ForwardNames() []string {
	names := make([]string, 0, len(s.Forward))
	for name := range s.Forward {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a short human-readable summary of the effective options.
func (s Slot) Describe() string {
	var parts []string
	if s.IsReadWrite() {
		parts = append(parts, "rw")
	} else {
		parts = append(parts, "ro")
	}
	if s.IsRequired() {
		parts = append(parts, "required")
	}
	if s.Validator != nil {
		parts = append(parts, "type="+validation.Describe(s.Validator))
	}
	if s.Default.IsFactory() {
		parts = append(parts, "default=<computed>")
	} else if s.Default != nil {
		parts = append(parts, fmt.Sprintf("default=%v", s.Default.Value))
	}
	for _, name := range s.ForwardNames() {
		parts = append(parts, fmt.Sprintf("forward %s->%s", name, s.Forward[name]))
	}
	return strings.Join(parts, " ")
}

// Merge combines an inherited slot with the child's own declaration of the
// same name. Each option is taken from own when own sets it, otherwise from
// inherited.
func Merge(inherited, own Slot) Slot {
	out := inherited
	out.Class = own.Class
	if own.Validator != nil {
		out.Validator = own.Validator
	}
	if own.ReadWrite != nil {
		out.ReadWrite = own.ReadWrite
	}
	if own.Required != nil {
		out.Required = own.Required
	}
	if own.Default != nil {
		out.Default = own.Default
	}
	if own.Forward != nil {
		out.Forward = own.Forward
	}
	return out
}

// ValidIdentifier checks if a string is a valid slot or class identifier.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
