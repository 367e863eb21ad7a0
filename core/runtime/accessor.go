package runtime

import (
	"errors"
	"fmt"

	"github.com/artpar/slotkit/core/schema"
	"github.com/artpar/slotkit/core/validation"
	"github.com/artpar/slotkit/ports"
)

// Accessor is the behavior bound to one accessor name.
type Accessor func(inst *Instance, args ...any) (any, error)

// compileAccessors builds a reader or reader/writer for every slot plus one
// forwarder per forward entry. Forward names may not shadow a slot or another
// forward.
func compileAccessors(s *schema.ClassSchema, obs ports.Observer) (map[string]Accessor, error) {
	accessors := make(map[string]Accessor, len(s.Order))
	owner := make(map[string]string, len(s.Order))

	for _, name := range s.Order {
		slot := s.Slots[name]
		if slot.IsReadWrite() {
			accessors[name] = readWriter(s.Class, slot, obs)
		} else {
			accessors[name] = reader(s.Class, name)
		}
		owner[name] = name
	}

	for _, name := range s.Order {
		slot := s.Slots[name]
		for _, local := range slot.ForwardNames() {
			if !schema.ValidIdentifier(local) {
				return nil, &schema.ConfigurationError{
					Class:  s.Class,
					Field:  name,
					Reason: fmt.Sprintf("forward name %q is not a valid identifier", local),
				}
			}
			if prev, taken := owner[local]; taken {
				reason := fmt.Sprintf("forward %q collides with slot %q", local, prev)
				if prev != local {
					reason = fmt.Sprintf("forward %q is already forwarded by slot %q", local, prev)
				}
				return nil, &schema.ConfigurationError{Class: s.Class, Field: name, Reason: reason}
			}
			target := slot.Forward[local]
			if target == "" {
				return nil, &schema.ConfigurationError{
					Class:  s.Class,
					Field:  name,
					Reason: fmt.Sprintf("forward %q has no target method", local),
				}
			}
			accessors[local] = forwarder(s.Class, name, local, target)
			owner[local] = name
		}
	}

	return accessors, nil
}

func reader(class, name string) Accessor {
	return func(inst *Instance, args ...any) (any, error) {
		if len(args) != 0 {
			return nil, &schema.AccessorUsageError{
				Class:  class,
				Field:  name,
				Args:   len(args),
				Reason: "slot is read-only",
			}
		}
		v, _ := inst.Lookup(name)
		return v, nil
	}
}

func readWriter(class string, slot schema.Slot, obs ports.Observer) Accessor {
	name := slot.Name
	check := slot.Validator
	expected := validation.Describe(check)

	return func(inst *Instance, args ...any) (any, error) {
		switch len(args) {
		case 0:
			v, _ := inst.Lookup(name)
			return v, nil
		case 1:
			value := args[0]
			if check != nil && !check.Check(value) {
				obs.ValidationFailed(class, name)
				return nil, &schema.TypeValidationError{
					Class:    class,
					Field:    name,
					Value:    value,
					Expected: expected,
				}
			}
			inst.store(name, value)
			return value, nil
		default:
			return nil, &schema.AccessorUsageError{
				Class:  class,
				Field:  name,
				Args:   len(args),
				Reason: "expected zero or one argument",
			}
		}
	}
}

func forwarder(class, field, local, target string) Accessor {
	return func(inst *Instance, args ...any) (any, error) {
		recv, ok := inst.Lookup(field)
		if !ok || absent(recv) {
			return nil, &schema.MissingRequiredFieldError{Class: class, Field: field, Forward: local}
		}
		out, err := invoke(recv, target, args)
		if err != nil {
			var usage *usageError
			if errors.As(err, &usage) {
				return nil, &schema.AccessorUsageError{
					Class:  class,
					Field:  local,
					Args:   len(args),
					Reason: usage.msg,
				}
			}
			return nil, err
		}
		return out, nil
	}
}
