package runtime

import (
	"strconv"

	"github.com/artpar/slotkit/core/validation"
)

// InstanceOf returns a validator accepting instances of class or of any
// class descending from it. The class does not need to exist yet.
func InstanceOf(class string) validation.Validator {
	return instanceOf(class)
}

type instanceOf string

func (c instanceOf) Check(v any) bool {
	inst, ok := v.(*Instance)
	return ok && inst != nil && inst.IsA(string(c))
}

func (c instanceOf) Describe() string {
	return "instance of " + string(c)
}

func (c instanceOf) Inline(ref string) string {
	return "isa(" + ref + ", " + strconv.Quote(string(c)) + ")"
}
