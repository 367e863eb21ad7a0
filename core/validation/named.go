package validation

import "fmt"

// Params carries the extra settings some named types need.
type Params struct {
	// Values lists accepted strings for enum.
	Values []string

	// Pattern is the regular expression for pattern.
	Pattern string
}

// Named builds a validator from a type name as written in a class
// definition file. An empty name means unrestricted and returns nil.
func Named(name string, p Params) (Validator, error) {
	switch name {
	case "":
		return nil, nil
	case TypeAny:
		return Any(), nil
	case TypeString:
		return String(), nil
	case TypeInt:
		return Int(), nil
	case TypeFloat:
		return Float(), nil
	case TypeBool:
		return Bool(), nil
	case TypeEmail:
		return Email(), nil
	case TypeURL:
		return URL(), nil
	case TypeUUID:
		return UUID(), nil
	case TypeEnum:
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("enum type requires values")
		}
		return Enum(p.Values...), nil
	case TypePattern:
		if p.Pattern == "" {
			return nil, fmt.Errorf("pattern type requires a pattern")
		}
		return Pattern(p.Pattern)
	default:
		return nil, fmt.Errorf("unknown type %q", name)
	}
}
