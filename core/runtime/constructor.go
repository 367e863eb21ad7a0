package runtime

import (
	"github.com/artpar/slotkit/core/schema"
	"github.com/artpar/slotkit/core/validation"
	"github.com/artpar/slotkit/ports"
)

// builder holds the state of one construction. Values are written to a
// scratch map and only become an Instance once every step has succeeded.
type builder struct {
	class  string
	args   map[string]any
	values map[string]any
}

func (b *builder) ClassName() string { return b.class }

func (b *builder) Lookup(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

type constructor func(b *builder) error

type fieldStep func(b *builder) error

// compileConstructor chains one step per ancestor level, root first. Each
// step handles the slots its level introduced, using the effective options
// of the class being compiled.
func compileConstructor(s *schema.ClassSchema, levels []Level, obs ports.Observer) constructor {
	ctor := constructor(func(*builder) error { return nil })

	for _, level := range levels {
		steps := make([]fieldStep, 0, len(level.Fields))
		for _, name := range level.Fields {
			steps = append(steps, compileField(s.Class, s.Slots[name], obs))
		}

		prev := ctor
		ctor = func(b *builder) error {
			if err := prev(b); err != nil {
				return err
			}
			for _, step := range steps {
				if err := step(b); err != nil {
					return err
				}
			}
			return nil
		}
	}

	return ctor
}

// compileField specializes the construction of one slot.
func compileField(class string, slot schema.Slot, obs ports.Observer) fieldStep {
	name := slot.Name
	check := slot.Validator
	expected := validation.Describe(check)
	def := slot.Default
	required := slot.IsRequired() && def == nil

	return func(b *builder) error {
		value, ok := b.args[name]
		if !ok {
			switch {
			case required:
				return &schema.MissingRequiredFieldError{Class: class, Field: name}
			case def.IsFactory():
				v, err := def.Factory(b)
				if err != nil {
					return &schema.ConfigurationError{
						Class:  class,
						Field:  name,
						Reason: "default factory failed",
						Err:    err,
					}
				}
				b.values[name] = v
			case def != nil:
				b.values[name] = def.Value
			}
			return nil
		}

		if check != nil && !check.Check(value) {
			obs.ValidationFailed(class, name)
			return &schema.TypeValidationError{
				Class:    class,
				Field:    name,
				Value:    value,
				Expected: expected,
			}
		}

		b.values[name] = value
		return nil
	}
}
