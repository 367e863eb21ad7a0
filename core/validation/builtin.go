package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Type names understood by Named.
const (
	TypeAny     = "any"
	TypeString  = "string"
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeBool    = "bool"
	TypeEmail   = "email"
	TypeURL     = "url"
	TypeUUID    = "uuid"
	TypeEnum    = "enum"
	TypePattern = "pattern"
)

// kindValidator is a validator backed by a Go type switch.
type kindValidator struct {
	name   string
	check  func(v any) bool
	inline string
}

func (k kindValidator) Check(v any) bool { return k.check(v) }
func (k kindValidator) Describe() string { return k.name }

func (k kindValidator) Inline(ref string) string {
	return strings.ReplaceAll(k.inline, "$v", ref)
}

// Any accepts every value, including nil.
func Any() Validator {
	return kindValidator{
		name:   TypeAny,
		check:  func(any) bool { return true },
		inline: "true",
	}
}

// String accepts Go strings.
func String() Validator {
	return kindValidator{
		name: TypeString,
		check: func(v any) bool {
			_, ok := v.(string)
			return ok
		},
		inline: "isString($v)",
	}
}

// Int accepts integer kinds and floats with no fractional part.
func Int() Validator {
	return kindValidator{
		name: TypeInt,
		check: func(v any) bool {
			switch n := v.(type) {
			case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
				return true
			case float32:
				return float32(int64(n)) == n
			case float64:
				return float64(int64(n)) == n
			default:
				return false
			}
		},
		inline: "isInt($v)",
	}
}

// Float accepts any numeric kind.
func Float() Validator {
	return kindValidator{
		name: TypeFloat,
		check: func(v any) bool {
			switch v.(type) {
			case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
				return true
			default:
				return false
			}
		},
		inline: "isNumber($v)",
	}
}

// Bool accepts booleans.
func Bool() Validator {
	return kindValidator{
		name: TypeBool,
		check: func(v any) bool {
			_, ok := v.(bool)
			return ok
		},
		inline: "isBool($v)",
	}
}

// Email accepts strings that parse as a single RFC 5322 address.
func Email() Validator {
	return kindValidator{
		name: TypeEmail,
		check: func(v any) bool {
			str, ok := v.(string)
			if !ok {
				return false
			}
			_, err := mail.ParseAddress(str)
			return err == nil
		},
		inline: "isEmail($v)",
	}
}

// URL accepts absolute request URIs.
func URL() Validator {
	return kindValidator{
		name: TypeURL,
		check: func(v any) bool {
			str, ok := v.(string)
			if !ok {
				return false
			}
			_, err := url.ParseRequestURI(str)
			return err == nil
		},
		inline: "isURL($v)",
	}
}

// UUID accepts strings in any form google/uuid can parse.
func UUID() Validator {
	return kindValidator{
		name: TypeUUID,
		check: func(v any) bool {
			switch id := v.(type) {
			case uuid.UUID:
				return true
			case string:
				return uuid.Validate(id) == nil
			default:
				return false
			}
		},
		inline: "isUUID($v)",
	}
}

// Enum accepts one of the listed strings.
func Enum(values ...string) Validator {
	vals := append([]string(nil), values...)
	quoted := make([]string, len(vals))
	for i, s := range vals {
		quoted[i] = strconv.Quote(s)
	}
	return kindValidator{
		name: fmt.Sprintf("one of: %s", strings.Join(vals, ", ")),
		check: func(v any) bool {
			str, ok := v.(string)
			return ok && containsString(vals, str)
		},
		inline: fmt.Sprintf("oneOf($v, %s)", strings.Join(quoted, ", ")),
	}
}

// Pattern accepts strings matching the regular expression.
func Pattern(expr string) (Validator, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return kindValidator{
		name: fmt.Sprintf("string matching /%s/", expr),
		check: func(v any) bool {
			str, ok := v.(string)
			return ok && re.MatchString(str)
		},
		inline: fmt.Sprintf("matches($v, %s)", strconv.Quote(expr)),
	}, nil
}

// MustPattern is like Pattern but panics on an invalid expression.
func MustPattern(expr string) Validator {
	v, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return v
}

// containsString checks if a string is in a slice.
func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
