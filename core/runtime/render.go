package runtime

import (
	"fmt"
	"strings"

	"github.com/artpar/slotkit/core/schema"
	"github.com/artpar/slotkit/core/validation"
)

// Render returns Go-like source describing the behavior Compile builds for
// s. It is for inspection only; the compiled closures do not depend on it.
func Render(s *schema.ClassSchema, levels []Level) string {
	var b strings.Builder

	if s.Parent != "" {
		fmt.Fprintf(&b, "// class %q extends %q\n\n", s.Class, s.Parent)
	} else {
		fmt.Fprintf(&b, "// class %q\n\n", s.Class)
	}

	fmt.Fprintf(&b, "func new_%s(args map[string]any) (*Instance, error) {\n", s.Class)
	b.WriteString("\tself := map[string]any{}\n")
	for _, level := range levels {
		if len(level.Fields) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\t// %s\n", level.Class)
		for _, name := range level.Fields {
			renderField(&b, s.Slots[name])
		}
	}
	b.WriteString("\treturn &Instance{values: self}, nil\n}\n")

	for _, name := range s.Order {
		slot := s.Slots[name]
		b.WriteString("\n")
		if slot.IsReadWrite() {
			renderReadWriter(&b, s.Class, slot)
		} else {
			renderReader(&b, s.Class, slot)
		}
		for _, local := range slot.ForwardNames() {
			b.WriteString("\n")
			fmt.Fprintf(&b, "func (self *%s) %s(args ...any) (any, error) {\n", s.Class, local)
			fmt.Fprintf(&b, "\tif self[%q] == nil {\n\t\treturn nil, missing(%q)\n\t}\n", slot.Name, slot.Name)
			fmt.Fprintf(&b, "\treturn invoke(self[%q], %q, args...)\n}\n", slot.Name, slot.Forward[local])
		}
	}

	return b.String()
}

func renderField(b *strings.Builder, slot schema.Slot) {
	fmt.Fprintf(b, "\tif v, ok := args[%q]; ok {\n", slot.Name)
	if slot.Validator != nil {
		fmt.Fprintf(b, "\t\tif !(%s) {\n", checkExpr(slot, "v"))
		fmt.Fprintf(b, "\t\t\treturn nil, invalid(%q, v, %q)\n\t\t}\n", slot.Name, validation.Describe(slot.Validator))
	}
	fmt.Fprintf(b, "\t\tself[%q] = v\n", slot.Name)

	switch {
	case slot.IsRequired() && slot.Default == nil:
		fmt.Fprintf(b, "\t} else {\n\t\treturn nil, missing(%q)\n\t}\n", slot.Name)
	case slot.Default.IsFactory():
		fmt.Fprintf(b, "\t} else {\n\t\tself[%q] = defaults[%q](self)\n\t}\n", slot.Name, slot.Name)
	case slot.Default != nil:
		fmt.Fprintf(b, "\t} else {\n\t\tself[%q] = %#v\n\t}\n", slot.Name, slot.Default.Value)
	default:
		b.WriteString("\t}\n")
	}
}

func renderReader(b *strings.Builder, class string, slot schema.Slot) {
	fmt.Fprintf(b, "func (self *%s) %s(args ...any) (any, error) {\n", class, slot.Name)
	fmt.Fprintf(b, "\tif len(args) > 0 {\n\t\treturn nil, readOnly(%q)\n\t}\n", slot.Name)
	fmt.Fprintf(b, "\treturn self[%q], nil\n}\n", slot.Name)
}

func renderReadWriter(b *strings.Builder, class string, slot schema.Slot) {
	fmt.Fprintf(b, "func (self *%s) %s(args ...any) (any, error) {\n", class, slot.Name)
	b.WriteString("\tswitch len(args) {\n\tcase 0:\n")
	fmt.Fprintf(b, "\t\treturn self[%q], nil\n", slot.Name)
	b.WriteString("\tcase 1:\n")
	if slot.Validator != nil {
		fmt.Fprintf(b, "\t\tif !(%s) {\n", checkExpr(slot, "args[0]"))
		fmt.Fprintf(b, "\t\t\treturn nil, invalid(%q, args[0], %q)\n\t\t}\n", slot.Name, validation.Describe(slot.Validator))
	}
	fmt.Fprintf(b, "\t\tself[%q] = args[0]\n\t\treturn args[0], nil\n", slot.Name)
	fmt.Fprintf(b, "\tdefault:\n\t\treturn nil, usage(%q)\n\t}\n}\n", slot.Name)
}

func checkExpr(slot schema.Slot, ref string) string {
	if expr, ok := validation.Inline(slot.Validator, ref); ok {
		return expr
	}
	return fmt.Sprintf("validators[%q].Check(%s)", slot.Name, ref)
}
