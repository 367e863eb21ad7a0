package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBuiltinValidators(t *testing.T) {
	tests := []struct {
		name  string
		v     Validator
		value any
		want  bool
	}{
		{"any accepts nil", Any(), nil, true},
		{"string accepts string", String(), "hello", true},
		{"string rejects int", String(), 42, false},
		{"int accepts int", Int(), 42, true},
		{"int accepts int64", Int(), int64(42), true},
		{"int accepts whole float", Int(), float64(3), true},
		{"int rejects fractional float", Int(), 3.5, false},
		{"int rejects string", Int(), "42", false},
		{"float accepts float", Float(), 3.14, true},
		{"float accepts int", Float(), 3, true},
		{"float rejects bool", Float(), true, false},
		{"bool accepts bool", Bool(), false, true},
		{"bool rejects string", Bool(), "true", false},
		{"email accepts address", Email(), "user@example.com", true},
		{"email rejects garbage", Email(), "not-an-email", false},
		{"email rejects non-string", Email(), 12, false},
		{"url accepts absolute", URL(), "https://example.com/x", true},
		{"url rejects relative", URL(), "example", false},
		{"uuid accepts string", UUID(), "550e8400-e29b-41d4-a716-446655440000", true},
		{"uuid accepts value", UUID(), uuid.New(), true},
		{"uuid rejects short", UUID(), "550e8400", false},
		{"enum accepts member", Enum("a", "b"), "b", true},
		{"enum rejects outsider", Enum("a", "b"), "c", false},
		{"enum rejects non-string", Enum("1"), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Check(tt.value); got != tt.want {
				t.Errorf("Check(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	oddSuffix := MustPattern(`[13579]$`)

	for _, ok := range []string{"a7", "39", "0x35"} {
		if !oddSuffix.Check(ok) {
			t.Errorf("expected %q to pass", ok)
		}
	}
	for _, bad := range []any{"24", 10, 20, 30, nil} {
		if oddSuffix.Check(bad) {
			t.Errorf("expected %v to fail", bad)
		}
	}

	if _, err := Pattern("("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "any" {
		t.Errorf("Describe(nil) = %q", got)
	}
	if got := Describe(String()); got != "string" {
		t.Errorf("Describe(String()) = %q", got)
	}
	if got := Describe(Enum("a", "b")); got != "one of: a, b" {
		t.Errorf("Describe(Enum) = %q", got)
	}
	if got := Describe(MustPattern(`\d+`)); got != `string matching /\d+/` {
		t.Errorf("Describe(Pattern) = %q", got)
	}

	bare := plainValidator{}
	if got := Describe(bare); got != "validation.plainValidator" {
		t.Errorf("Describe(bare) = %q", got)
	}
}

type plainValidator struct{}

func (plainValidator) Check(any) bool { return true }

func TestInline(t *testing.T) {
	expr, ok := Inline(String(), "args[\"x\"]")
	if !ok {
		t.Fatal("expected string validator to be inlineable")
	}
	if expr != `isString(args["x"])` {
		t.Errorf("Inline = %q", expr)
	}

	if _, ok := Inline(plainValidator{}, "v"); ok {
		t.Error("expected plain validator to have no inline form")
	}
	if _, ok := Inline(Func("even", func(any) bool { return true }), "v"); ok {
		t.Error("expected Func validator to have no inline form")
	}
}

func TestCombinators(t *testing.T) {
	short := Func("at most 3 chars", func(v any) bool {
		s, ok := v.(string)
		return ok && len(s) <= 3
	})
	v := All(String(), short)

	if !v.Check("abc") {
		t.Error("expected abc to pass")
	}
	if v.Check("abcd") {
		t.Error("expected abcd to fail")
	}
	if got := Describe(v); got != "string and at most 3 chars" {
		t.Errorf("Describe(All) = %q", got)
	}

	m := Maybe(Int())
	if !m.Check(nil) || !m.Check(1) || m.Check("1") {
		t.Error("Maybe(Int()) accepted the wrong values")
	}
	if !strings.HasPrefix(Describe(m), "optional") {
		t.Errorf("Describe(Maybe) = %q", Describe(m))
	}
}

func TestNamed(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		params  Params
		value   any
		want    bool
		wantErr bool
		wantNil bool
	}{
		{name: "empty is unrestricted", typ: "", wantNil: true},
		{name: "string", typ: "string", value: "x", want: true},
		{name: "int", typ: "int", value: "x", want: false},
		{name: "enum", typ: "enum", params: Params{Values: []string{"on", "off"}}, value: "on", want: true},
		{name: "enum without values", typ: "enum", wantErr: true},
		{name: "pattern", typ: "pattern", params: Params{Pattern: "^a"}, value: "abc", want: true},
		{name: "pattern without expression", typ: "pattern", wantErr: true},
		{name: "bad pattern", typ: "pattern", params: Params{Pattern: "["}, wantErr: true},
		{name: "unknown", typ: "money", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Named(tt.typ, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if v != nil {
					t.Fatalf("expected nil validator, got %T", v)
				}
				return
			}
			if got := v.Check(tt.value); got != tt.want {
				t.Errorf("Check(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
