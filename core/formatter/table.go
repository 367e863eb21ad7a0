package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatSchema prints one row per slot, in schema order.
func (f *TableFormatter) FormatSchema(w io.Writer, s SchemaView, opts FormatOptions) error {
	if s.Parent != "" {
		fmt.Fprintf(w, "Class: %s (extends %s)\n", s.Class, s.Parent)
	} else {
		fmt.Fprintf(w, "Class: %s\n", s.Class)
	}
	if len(s.Slots) == 0 {
		fmt.Fprintln(w, "No slots.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !opts.NoHeader {
		fmt.Fprintln(tw, "SLOT\tFROM\tTYPE\tACCESS\tREQUIRED\tDEFAULT\tFORWARD")
	}
	for _, slot := range s.Slots {
		access := "ro"
		if slot.ReadWrite {
			access = "rw"
		}
		def := "-"
		switch {
		case slot.Computed:
			def = "<computed>"
		case slot.Default != nil:
			def = f.formatValue(slot.Default, opts.MaxWidth)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			slot.Name,
			slot.Class,
			f.truncate(slot.Type, opts.MaxWidth),
			access,
			f.formatValue(slot.Required, 0),
			def,
			f.formatForward(slot.Forward),
		)
	}
	return tw.Flush()
}

// FormatInstance prints the instance as key-value pairs in schema order.
// Unset slots print as "-".
func (f *TableFormatter) FormatInstance(w io.Writer, inst InstanceView, opts FormatOptions) error {
	fmt.Fprintf(w, "Instance of %s\n", inst.Class)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range inst.Fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f.formatLabel(name), f.formatValue(inst.Values[name], opts.MaxWidth))
	}
	return tw.Flush()
}

// FormatClasses prints one row per class.
func (f *TableFormatter) FormatClasses(w io.Writer, classes []ClassSummary, opts FormatOptions) error {
	if len(classes) == 0 {
		fmt.Fprintln(w, "No classes found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !opts.NoHeader {
		fmt.Fprintln(tw, "CLASS\tPARENT\tSTATE\tSLOTS\tERROR")
	}
	for _, c := range classes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			c.Class,
			f.formatValue(nilIfEmpty(c.Parent), 0),
			c.State,
			c.Slots,
			f.formatValue(nilIfEmpty(c.Error), opts.MaxWidth),
		)
	}
	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

// formatLabel formats a slot name as a label.
func (f *TableFormatter) formatLabel(name string) string {
	// Convert snake_case to Title Case
	words := strings.Split(name, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func (f *TableFormatter) formatForward(fwd map[string]string) string {
	if len(fwd) == 0 {
		return "-"
	}
	names := make([]string, 0, len(fwd))
	for name := range fwd {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"->"+fwd[name])
	}
	return strings.Join(parts, ",")
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any, maxWidth int) string {
	if val == nil {
		return "-"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = v
	case bool:
		if v {
			str = "yes"
		} else {
			str = "no"
		}
	case []byte:
		str = "[binary]"
	case float64:
		// Check if it's a whole number
		if v == float64(int64(v)) {
			str = fmt.Sprintf("%d", int64(v))
		} else {
			str = fmt.Sprintf("%.2f", v)
		}
	case InstanceView:
		str = fmt.Sprintf("<%s>", v.Class)
	case fmt.Stringer:
		str = v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			str = fmt.Sprintf("%v", v)
		} else {
			str = string(b)
		}
	}

	return f.truncate(str, maxWidth)
}

func (f *TableFormatter) truncate(str string, maxWidth int) string {
	if maxWidth > 3 && len(str) > maxWidth {
		return str[:maxWidth-3] + "..."
	}
	return str
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
