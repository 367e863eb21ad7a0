package schema

import "maps"

// ClassSchema is the merged, immutable set of effective slots for a class,
// inherited slots included. It is produced once by the registry and must not
// be modified afterwards.
type ClassSchema struct {
	// Class is the class name.
	Class string

	// Parent is the direct ancestor, empty for a root class.
	Parent string

	// Order lists slot names: ancestor slots in ancestor order, then slots
	// this class introduced in declaration order.
	Order []string

	// Slots maps each name in Order to its effective slot.
	Slots map[string]Slot

	// Own lists the slots this class introduced (not present in any ancestor).
	Own []string

	// Depth is the number of ancestors above this class.
	Depth int
}

// Slot returns the effective slot for name.
func (s *ClassSchema) Slot(name string) (Slot, bool) {
	slot, ok := s.Slots[name]
	return slot, ok
}

// Has reports whether the class has a slot with the given name.
func (s *ClassSchema) Has(name string) bool {
	_, ok := s.Slots[name]
	return ok
}

// Fields returns the effective slots in schema order.
func (s *ClassSchema) Fields() []Slot {
	fields := make([]Slot, 0, len(s.Order))
	for _, name := range s.Order {
		fields = append(fields, s.Slots[name])
	}
	return fields
}

// Inherit builds the schema for a class from its parent's resolved schema
// (nil for a root class) and the class's own declarations in declaration
// order. Inherited slots keep their position; a re-declared slot is merged
// option by option; new slots are appended. Forward maps are copied, so later
// changes to own do not reach the schema.
func Inherit(class string, parent *ClassSchema, own []Slot) *ClassSchema {
	s := &ClassSchema{
		Class: class,
		Slots: make(map[string]Slot, len(own)),
	}

	byName := make(map[string]Slot, len(own))
	for _, slot := range own {
		slot.Forward = maps.Clone(slot.Forward)
		byName[slot.Name] = slot
	}

	if parent != nil {
		s.Parent = parent.Class
		s.Depth = parent.Depth + 1
		s.Order = make([]string, 0, len(parent.Order)+len(own))
		for _, name := range parent.Order {
			inherited := parent.Slots[name]
			if decl, ok := byName[name]; ok {
				inherited = Merge(inherited, decl)
			}
			s.Order = append(s.Order, name)
			s.Slots[name] = inherited
		}
	}

	for _, slot := range own {
		if _, exists := s.Slots[slot.Name]; exists {
			continue
		}
		slot.Forward = maps.Clone(slot.Forward)
		s.Order = append(s.Order, slot.Name)
		s.Own = append(s.Own, slot.Name)
		s.Slots[slot.Name] = slot
	}

	return s
}
