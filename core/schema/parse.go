package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/artpar/slotkit/core/validation"
	"gopkg.in/yaml.v3"
)

// TypeInstance is the definition-file type for "an instance of class X".
// The registry supplies the validator since it depends on compiled classes.
const TypeInstance = "instance"

// Definition is one class as written in a definition file.
type Definition struct {
	// Class is the class name.
	Class string

	// Extends is the direct ancestor, if any.
	Extends string

	// Slots are the slot declarations in file order.
	Slots []SlotDefinition

	// Source is the file the definition came from, if any.
	Source string
}

// SlotDefinition is one slot as written in a definition file.
type SlotDefinition struct {
	Name string `yaml:"-"`

	Type    string   `yaml:"type,omitempty"`
	Values  []string `yaml:"values,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
	Of      string   `yaml:"class,omitempty"`

	ReadWrite *bool             `yaml:"rw,omitempty"`
	Required  *bool             `yaml:"required,omitempty"`
	Default   any               `yaml:"default,omitempty"`
	Generate  string            `yaml:"generate,omitempty"`
	Forward   map[string]string `yaml:"forward,omitempty"`

	// HasDefault distinguishes "default: null" from no default at all.
	HasDefault bool `yaml:"-"`
}

var slotKeys = map[string]bool{
	"type":       true,
	"values":     true,
	"pattern":    true,
	"class":      true,
	"rw":         true,
	"read_write": true,
	"required":   true,
	"default":    true,
	"generate":   true,
	"forward":    true,
}

type rawDefinition struct {
	Class   string    `yaml:"class"`
	Extends yaml.Node `yaml:"extends"`
	Slots   yaml.Node `yaml:"slots"`
}

// ParseFile parses class definitions from a YAML file.
func ParseFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range defs {
		defs[i].Source = path
	}
	return defs, nil
}

// Parse parses class definitions from YAML bytes. A file may hold several
// classes as separate YAML documents.
func Parse(data []byte) ([]Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var defs []Definition
	for {
		var raw rawDefinition
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		def, err := raw.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}

// ParseDir parses all definition files in a directory, including
// subdirectories. Files are visited in lexical order.
func ParseDir(dir string) ([]Definition, error) {
	var defs []Definition

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		fileDefs, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}

	return defs, nil
}

func (r rawDefinition) definition() (Definition, error) {
	def := Definition{Class: r.Class}

	if def.Class == "" {
		return Definition{}, &ConfigurationError{Reason: "class name is required"}
	}

	parent, err := decodeExtends(r.Class, &r.Extends)
	if err != nil {
		return Definition{}, err
	}
	def.Extends = parent

	slots, err := decodeSlots(r.Class, &r.Slots)
	if err != nil {
		return Definition{}, err
	}
	def.Slots = slots

	return def, nil
}

func decodeExtends(class string, node *yaml.Node) (string, error) {
	switch node.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return "", nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		switch len(node.Content) {
		case 0:
			return "", nil
		case 1:
			return node.Content[0].Value, nil
		default:
			parents := make([]string, 0, len(node.Content))
			for _, n := range node.Content {
				parents = append(parents, n.Value)
			}
			return "", &ConfigurationError{
				Class:  class,
				Reason: fmt.Sprintf("multiple ancestors are not supported: %s", strings.Join(parents, ", ")),
			}
		}
	default:
		return "", &ConfigurationError{Class: class, Reason: "extends must be a class name"}
	}
}

func decodeSlots(class string, node *yaml.Node) ([]SlotDefinition, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigurationError{Class: class, Reason: "slots must be a mapping"}
	}

	var errs []string
	slots := make([]SlotDefinition, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		if !ValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("slot name %q is not a valid identifier", name))
			continue
		}

		slot, err := decodeSlot(name, value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("slot %q: %v", name, err))
			continue
		}
		slots = append(slots, slot)
	}

	if len(errs) > 0 {
		return nil, &ConfigurationError{
			Class:  class,
			Reason: fmt.Sprintf("validation errors:\n  - %s", strings.Join(errs, "\n  - ")),
		}
	}

	return slots, nil
}

func decodeSlot(name string, node *yaml.Node) (SlotDefinition, error) {
	slot := SlotDefinition{Name: name}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return slot, nil
	}
	if node.Kind != yaml.MappingNode {
		return SlotDefinition{}, fmt.Errorf("options must be a mapping")
	}

	var unknown []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !slotKeys[key] {
			unknown = append(unknown, key)
			continue
		}
		switch key {
		case "default":
			slot.HasDefault = true
		case "read_write":
			// rw is the canonical spelling; read_write decodes into it below.
			var b bool
			if err := node.Content[i+1].Decode(&b); err != nil {
				return SlotDefinition{}, fmt.Errorf("read_write: %w", err)
			}
			slot.ReadWrite = Bool(b)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return SlotDefinition{}, fmt.Errorf("unrecognized options: %s", strings.Join(unknown, ", "))
	}

	rw := slot.ReadWrite
	if err := node.Decode(&slot); err != nil {
		return SlotDefinition{}, err
	}
	if slot.ReadWrite == nil {
		slot.ReadWrite = rw
	}
	slot.Name = name

	return slot, nil
}

// Options converts the definition into slot options. instanceOf supplies
// validators for the instance type; it may be nil if no slot uses it.
func (d SlotDefinition) Options(instanceOf func(class string) validation.Validator) (Options, error) {
	opts := Options{
		ReadWrite: d.ReadWrite,
		Required:  d.Required,
	}

	if d.Type == TypeInstance {
		if d.Of == "" {
			return Options{}, fmt.Errorf("instance type requires class")
		}
		if instanceOf == nil {
			return Options{}, fmt.Errorf("instance type is not available here")
		}
		opts.Validator = instanceOf(d.Of)
	} else {
		v, err := validation.Named(d.Type, validation.Params{Values: d.Values, Pattern: d.Pattern})
		if err != nil {
			return Options{}, err
		}
		opts.Validator = v
	}

	switch {
	case d.HasDefault && d.Generate != "":
		return Options{}, fmt.Errorf("default and generate are mutually exclusive")
	case d.HasDefault:
		opts.Default = Fixed(d.Default)
	case d.Generate != "":
		def, err := Generated(d.Generate)
		if err != nil {
			return Options{}, err
		}
		opts.Default = def
	}
	if len(d.Forward) > 0 {
		opts.Forward = make(map[string]string, len(d.Forward))
		for k, v := range d.Forward {
			opts.Forward[k] = v
		}
	}

	return opts, nil
}
