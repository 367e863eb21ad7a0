package formatter

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatSchema formats a schema as YAML. The output has the same shape as a
// class definition listing, one entry per slot in schema order.
func (f *YAMLFormatter) FormatSchema(w io.Writer, s SchemaView, opts FormatOptions) error {
	return f.encode(w, s)
}

// FormatInstance formats an instance as YAML.
func (f *YAMLFormatter) FormatInstance(w io.Writer, inst InstanceView, opts FormatOptions) error {
	return f.encode(w, inst)
}

// FormatClasses formats class summaries as YAML.
func (f *YAMLFormatter) FormatClasses(w io.Writer, classes []ClassSummary, opts FormatOptions) error {
	if classes == nil {
		classes = []ClassSummary{}
	}
	output := map[string]any{
		"count":   len(classes),
		"classes": classes,
	}
	return f.encode(w, output)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output)
}

// encode writes YAML to the writer.
func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}
