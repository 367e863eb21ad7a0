package schema

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator names usable as "generate:" in a definition file.
const (
	GenerateUUID = "uuid"
	GenerateNow  = "now"
)

var generators = map[string]func() any{
	GenerateUUID: func() any { return uuid.NewString() },
	GenerateNow:  func() any { return time.Now().UTC().Format(time.RFC3339) },
}

// Generated returns a computed default backed by a named generator.
func Generated(name string) (*Default, error) {
	gen, ok := generators[name]
	if !ok {
		names := make([]string, 0, len(generators))
		for n := range generators {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown generator %q (available: %s)", name, strings.Join(names, ", "))
	}
	return Computed(func(InstanceView) (any, error) {
		return gen(), nil
	}), nil
}
