package schema

import (
	"reflect"
	"testing"

	"github.com/artpar/slotkit/core/validation"
)

func TestInheritRoot(t *testing.T) {
	s := Inherit("p1", nil, []Slot{
		{Name: "x", Class: "p1", Options: Options{ReadWrite: Bool(true)}},
		{Name: "y", Class: "p1", Options: Options{ReadWrite: Bool(true)}},
	})

	if s.Parent != "" || s.Depth != 0 {
		t.Errorf("root class has parent %q depth %d", s.Parent, s.Depth)
	}
	if !reflect.DeepEqual(s.Order, []string{"x", "y"}) {
		t.Errorf("Order = %v", s.Order)
	}
	if !reflect.DeepEqual(s.Own, []string{"x", "y"}) {
		t.Errorf("Own = %v", s.Own)
	}
	if !s.Has("x") || s.Has("z") {
		t.Error("Has reports wrong slots")
	}
}

func TestInheritOrderAndMerge(t *testing.T) {
	p1 := Inherit("p1", nil, []Slot{
		{Name: "x", Class: "p1", Options: Options{ReadWrite: Bool(true), Required: Bool(true)}},
		{Name: "y", Class: "p1", Options: Options{ReadWrite: Bool(true)}},
	})

	// Child declares a new slot before re-declaring an inherited one.
	p2 := Inherit("p2", p1, []Slot{
		{Name: "w", Class: "p2"},
		{Name: "x", Class: "p2", Options: Options{Required: Bool(false), Validator: validation.Int()}},
		{Name: "a", Class: "p2"},
	})

	if !reflect.DeepEqual(p2.Order, []string{"x", "y", "w", "a"}) {
		t.Errorf("Order = %v, want ancestor slots first", p2.Order)
	}
	if !reflect.DeepEqual(p2.Own, []string{"w", "a"}) {
		t.Errorf("Own = %v", p2.Own)
	}
	if p2.Parent != "p1" || p2.Depth != 1 {
		t.Errorf("Parent = %q, Depth = %d", p2.Parent, p2.Depth)
	}

	x, _ := p2.Slot("x")
	if !x.IsReadWrite() {
		t.Error("x should inherit read_write")
	}
	if x.IsRequired() {
		t.Error("x should have required overridden to false")
	}
	if x.Validator == nil || x.Class != "p2" {
		t.Errorf("x = %+v", x)
	}

	y, _ := p2.Slot("y")
	if y.Class != "p1" {
		t.Errorf("y should be untouched, Class = %q", y.Class)
	}

	// The parent schema is not modified.
	px, _ := p1.Slot("x")
	if !px.IsRequired() || px.Validator != nil {
		t.Error("parent schema was modified")
	}

	fields := p2.Fields()
	if len(fields) != 4 || fields[2].Name != "w" {
		t.Errorf("Fields() = %v", fields)
	}
}

func TestInheritDeterministic(t *testing.T) {
	p1 := Inherit("p1", nil, []Slot{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	own := []Slot{{Name: "d"}, {Name: "b", Options: Options{Required: Bool(true)}}, {Name: "e"}}

	first := Inherit("p2", p1, own)
	for i := 0; i < 20; i++ {
		again := Inherit("p2", p1, own)
		if !reflect.DeepEqual(first.Order, again.Order) {
			t.Fatalf("order changed between runs: %v vs %v", first.Order, again.Order)
		}
		for _, name := range first.Order {
			if first.Slots[name].Describe() != again.Slots[name].Describe() {
				t.Fatalf("slot %s changed between runs", name)
			}
		}
	}
}

func TestInheritCopiesForward(t *testing.T) {
	parentFwd := map[string]string{"a": "A"}
	childFwd := map[string]string{"b": "B"}
	p1 := Inherit("p1", nil, []Slot{{Name: "x", Class: "p1", Options: Options{Forward: parentFwd}}})
	p2 := Inherit("p2", p1, []Slot{
		{Name: "x", Class: "p2", Options: Options{Forward: childFwd}},
		{Name: "y", Class: "p2", Options: Options{Forward: map[string]string{"c": "C"}}},
	})

	parentFwd["z"] = "Z"
	childFwd["z"] = "Z"

	if got := p1.Slots["x"].Forward; !reflect.DeepEqual(got, map[string]string{"a": "A"}) {
		t.Errorf("p1 x forward = %v", got)
	}
	if got := p2.Slots["x"].Forward; !reflect.DeepEqual(got, map[string]string{"b": "B"}) {
		t.Errorf("p2 x forward = %v", got)
	}
}
