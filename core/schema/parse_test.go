package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/slotkit/core/validation"
)

func TestParse(t *testing.T) {
	yaml := `
class: point
slots:
  x: { type: int, rw: true, default: 0 }
  y: { type: int, read_write: true, default: 0 }
---
class: point3d
extends: point
slots:
  x: { required: true }
  z:
    type: enum
    values: [near, far]
    forward: { upper: ToUpper }
  tag:
`

	defs, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}

	point := defs[0]
	if point.Class != "point" || point.Extends != "" {
		t.Errorf("point = %q extends %q", point.Class, point.Extends)
	}
	if got := slotNames(point.Slots); got != "x,y" {
		t.Errorf("point slots = %s, want x,y", got)
	}
	if !point.Slots[1].HasDefault || point.Slots[1].ReadWrite == nil || !*point.Slots[1].ReadWrite {
		t.Errorf("point.y should be rw with a default: %+v", point.Slots[1])
	}

	p3 := defs[1]
	if p3.Extends != "point" {
		t.Errorf("Extends = %q, want point", p3.Extends)
	}
	if got := slotNames(p3.Slots); got != "x,z,tag" {
		t.Errorf("point3d slots = %s, want x,z,tag", got)
	}

	x := p3.Slots[0]
	if x.ReadWrite != nil {
		t.Error("x should not set rw")
	}
	if x.Required == nil || !*x.Required {
		t.Error("x should be required")
	}
	if x.HasDefault {
		t.Error("x should not have a default")
	}

	z := p3.Slots[1]
	if z.Forward["upper"] != "ToUpper" {
		t.Errorf("z.forward = %v", z.Forward)
	}
}

func TestParseExtendsList(t *testing.T) {
	defs, err := Parse([]byte("class: b\nextends: [a]\n"))
	if err != nil {
		t.Fatalf("single-element list should parse: %v", err)
	}
	if defs[0].Extends != "a" {
		t.Errorf("Extends = %q, want a", defs[0].Extends)
	}

	_, err = Parse([]byte("class: c\nextends: [a, b]\n"))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for multiple parents, got %v", err)
	}
	if !strings.Contains(err.Error(), "multiple ancestors") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing class name",
			yaml: "slots:\n  x: {}\n",
			want: "class name is required",
		},
		{
			name: "unknown top-level key",
			yaml: "class: a\nmodule: b\n",
			want: "parse yaml",
		},
		{
			name: "unknown slot option",
			yaml: "class: a\nslots:\n  x: { lazy: true }\n",
			want: "unrecognized options: lazy",
		},
		{
			name: "bad slot name",
			yaml: "class: a\nslots:\n  9x: {}\n",
			want: "not a valid identifier",
		},
		{
			name: "slots not a mapping",
			yaml: "class: a\nslots: [x, y]\n",
			want: "slots must be a mapping",
		},
		{
			name: "slot options not a mapping",
			yaml: "class: a\nslots:\n  x: 5\n",
			want: "options must be a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "a.yaml"):   "class: a\nslots:\n  x: {}\n",
		filepath.Join(sub, "b.yml"):    "class: b\nextends: a\n",
		filepath.Join(dir, "notes.md"): "ignored",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	defs, err := ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].Class != "a" || defs[1].Class != "b" {
		t.Errorf("unexpected order: %s, %s", defs[0].Class, defs[1].Class)
	}
	if defs[1].Source != filepath.Join(sub, "b.yml") {
		t.Errorf("Source = %q", defs[1].Source)
	}

	if _, err := ParseDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSlotDefinitionOptions(t *testing.T) {
	def := SlotDefinition{
		Name:       "status",
		Type:       "enum",
		Values:     []string{"on", "off"},
		ReadWrite:  Bool(true),
		Default:    "on",
		HasDefault: true,
		Forward:    map[string]string{"len": "Len"},
	}

	opts, err := def.Options(nil)
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.Validator == nil || !opts.Validator.Check("off") || opts.Validator.Check("dim") {
		t.Error("enum validator not built correctly")
	}
	if opts.Default == nil || opts.Default.Value != "on" {
		t.Errorf("Default = %+v", opts.Default)
	}
	if opts.Required != nil {
		t.Error("Required should stay unset")
	}
	if opts.Forward["len"] != "Len" {
		t.Errorf("Forward = %v", opts.Forward)
	}

	inst := SlotDefinition{Name: "owner", Type: TypeInstance, Of: "user"}
	if _, err := inst.Options(nil); err == nil {
		t.Error("expected error without an instance resolver")
	}
	var asked string
	opts, err = inst.Options(func(class string) validation.Validator {
		asked = class
		return validation.Any()
	})
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if asked != "user" || opts.Validator == nil {
		t.Errorf("instance resolver asked for %q", asked)
	}

	if _, err := (SlotDefinition{Type: TypeInstance}).Options(nil); err == nil {
		t.Error("expected error for instance type without class")
	}
	if _, err := (SlotDefinition{Type: "money"}).Options(nil); err == nil {
		t.Error("expected error for unknown type")
	}
}

func slotNames(slots []SlotDefinition) string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, s.Name)
	}
	return strings.Join(names, ",")
}

func TestSlotDefinitionGenerate(t *testing.T) {
	defs, err := Parse([]byte("class: doc\nslots:\n  id: { type: uuid, generate: uuid }\n  at: { type: string, generate: now }\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if defs[0].Slots[0].Generate != GenerateUUID {
		t.Errorf("Generate = %q", defs[0].Slots[0].Generate)
	}

	for _, sd := range defs[0].Slots {
		opts, err := sd.Options(nil)
		if err != nil {
			t.Fatalf("%s: Options failed: %v", sd.Name, err)
		}
		if !opts.Default.IsFactory() {
			t.Fatalf("%s: generated default should be computed", sd.Name)
		}

		first, err := opts.Default.Factory(nil)
		if err != nil {
			t.Fatalf("%s: factory failed: %v", sd.Name, err)
		}
		if !opts.Validator.Check(first) {
			t.Errorf("%s: generated value %v rejected by its own type", sd.Name, first)
		}
	}

	opts, _ := defs[0].Slots[0].Options(nil)
	a, _ := opts.Default.Factory(nil)
	b, _ := opts.Default.Factory(nil)
	if a == b {
		t.Error("uuid generator should produce a new value per instance")
	}

	bad := []SlotDefinition{
		{Name: "x", Generate: "random"},
		{Name: "x", Generate: GenerateUUID, Default: "fixed", HasDefault: true},
	}
	for _, sd := range bad {
		if _, err := sd.Options(nil); err == nil {
			t.Errorf("expected error for %+v", sd)
		}
	}
}
