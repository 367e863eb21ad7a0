package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every typed error below matches exactly one of these with
// errors.Is.
var (
	// ErrConfiguration covers bad declaration shape, bad ancestry and
	// declaring after finalization.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingRequired covers a required slot absent at construction and a
	// forwarding target absent at call time.
	ErrMissingRequired = errors.New("missing required field")

	// ErrTypeValidation covers a validator rejecting a value.
	ErrTypeValidation = errors.New("type validation failed")

	// ErrAccessorUsage covers calling an accessor the wrong way.
	ErrAccessorUsage = errors.New("accessor usage error")
)

// ConfigurationError reports a declaration the engine cannot accept.
type ConfigurationError struct {
	Class  string
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("class ")
	b.WriteString(quoteOrDash(e.Class))
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// SchemaError reports a class whose schema cannot be resolved: an unknown
// ancestor or a cycle in the ancestor chain. It is a configuration error.
type SchemaError struct {
	Class string
	// Chain is the ancestor path walked before the failure, starting at Class.
	Chain  []string
	Reason string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("class %s: %s", quoteOrDash(e.Class), e.Reason)
	if len(e.Chain) > 1 {
		msg += " (" + strings.Join(e.Chain, " -> ") + ")"
	}
	return msg
}

func (e *SchemaError) Is(target error) bool { return target == ErrConfiguration }

// MissingRequiredFieldError reports a required slot with no value.
type MissingRequiredFieldError struct {
	Class string
	Field string
	// Forward is set when the failure came from a forwarding accessor.
	Forward string
}

func (e *MissingRequiredFieldError) Error() string {
	if e.Forward != "" {
		return fmt.Sprintf("class %s: cannot forward %q: field %q is not set", quoteOrDash(e.Class), e.Forward, e.Field)
	}
	return fmt.Sprintf("class %s: field %q is required", quoteOrDash(e.Class), e.Field)
}

func (e *MissingRequiredFieldError) Is(target error) bool { return target == ErrMissingRequired }

// TypeValidationError reports a value rejected by a slot's validator.
type TypeValidationError struct {
	Class    string
	Field    string
	Value    any
	Expected string
}

func (e *TypeValidationError) Error() string {
	return fmt.Sprintf("class %s: field %q: value %#v is not a valid %s", quoteOrDash(e.Class), e.Field, e.Value, e.Expected)
}

func (e *TypeValidationError) Is(target error) bool { return target == ErrTypeValidation }

// AccessorUsageError reports an accessor called with the wrong arguments.
type AccessorUsageError struct {
	Class  string
	Field  string
	Args   int
	Reason string
}

func (e *AccessorUsageError) Error() string {
	return fmt.Sprintf("class %s: accessor %q called with %d argument(s): %s", quoteOrDash(e.Class), e.Field, e.Args, e.Reason)
}

func (e *AccessorUsageError) Is(target error) bool { return target == ErrAccessorUsage }

func quoteOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return fmt.Sprintf("%q", s)
}
