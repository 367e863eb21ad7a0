package formatter

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatSchema formats a schema as JSON.
func (f *JSONFormatter) FormatSchema(w io.Writer, s SchemaView, opts FormatOptions) error {
	return f.encode(w, s, opts.Compact)
}

// FormatInstance formats an instance as JSON.
func (f *JSONFormatter) FormatInstance(w io.Writer, inst InstanceView, opts FormatOptions) error {
	return f.encode(w, inst, opts.Compact)
}

// FormatClasses formats class summaries as JSON.
func (f *JSONFormatter) FormatClasses(w io.Writer, classes []ClassSummary, opts FormatOptions) error {
	if classes == nil {
		classes = []ClassSummary{}
	}
	output := map[string]any{
		"count":   len(classes),
		"classes": classes,
	}
	return f.encode(w, output, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output, false)
}

// encode writes JSON to the writer.
func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}
