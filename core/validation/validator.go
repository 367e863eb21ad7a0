// Package validation provides the validator capability slots are checked with.
// A validator answers whether a value is acceptable for a slot. It may also
// describe the type it expects and expose an inlineable check used when
// rendering synthesized source for diagnostics.
package validation

import (
	"fmt"
	"strings"
)

// Validator checks a single value.
type Validator interface {
	// Check returns true if v is acceptable.
	Check(v any) bool
}

// Describer is implemented by validators that can name the type they expect.
// The description is used in TypeValidationError messages.
type Describer interface {
	Describe() string
}

// Inliner is implemented by validators that can be expressed as a Go boolean
// expression over a value reference. Validators without it are rendered as a
// call to Check; there is no semantic difference.
type Inliner interface {
	Inline(ref string) string
}

// Describe returns the expected type description for v.
func Describe(v Validator) string {
	if v == nil {
		return "any"
	}
	if d, ok := v.(Describer); ok {
		return d.Describe()
	}
	return fmt.Sprintf("%T", v)
}

// Inline returns the inline check for v if it has one.
func Inline(v Validator, ref string) (string, bool) {
	if in, ok := v.(Inliner); ok {
		return in.Inline(ref), true
	}
	return "", false
}

// Func adapts a plain function into a Validator with a description.
func Func(desc string, fn func(v any) bool) Validator {
	return funcValidator{desc: desc, fn: fn}
}

type funcValidator struct {
	desc string
	fn   func(v any) bool
}

func (f funcValidator) Check(v any) bool { return f.fn(v) }
func (f funcValidator) Describe() string { return f.desc }

// All accepts a value only if every validator accepts it.
func All(vs ...Validator) Validator {
	return allValidator(vs)
}

type allValidator []Validator

func (a allValidator) Check(v any) bool {
	for _, inner := range a {
		if !inner.Check(v) {
			return false
		}
	}
	return true
}

func (a allValidator) Describe() string {
	descs := make([]string, 0, len(a))
	for _, inner := range a {
		descs = append(descs, Describe(inner))
	}
	return strings.Join(descs, " and ")
}

// Maybe accepts nil or anything inner accepts.
func Maybe(inner Validator) Validator {
	return maybeValidator{inner: inner}
}

type maybeValidator struct {
	inner Validator
}

func (m maybeValidator) Check(v any) bool {
	return v == nil || m.inner.Check(v)
}

func (m maybeValidator) Describe() string {
	return "optional " + Describe(m.inner)
}
