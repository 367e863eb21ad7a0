/*
Package schema defines slot declarations and the merged class schema built
from them.

A class declares named slots. Each slot carries optional settings: a
validator, read/write access, whether it is required, a default and a set of
forwarding accessors. A class that extends another inherits every ancestor
slot. When it re-declares one, the options are merged one at a time: whatever
the child sets wins, everything else is inherited.

# Definition Files

Classes can be declared in YAML:

	class: point
	slots:
	  x: { type: int, rw: true, default: 0 }
	  y: { type: int, rw: true, default: 0 }
	---
	class: point3d
	extends: point
	slots:
	  x: { required: true }
	  z: { type: int, rw: true }

The resulting schema for point3d orders its slots x, y, z. Slot x stays
read/write and typed int (inherited) but is now required.

# Slot Options

  - type:      validator name (string, int, float, bool, email, url, uuid,
               enum, pattern, instance, any)
  - values:    accepted strings for enum
  - pattern:   regular expression for pattern
  - class:     target class for instance
  - rw:        writable after construction (read_write is accepted too)
  - required:  construction fails without a value unless a default exists
  - default:   fixed default value
  - generate:  per-instance default from a generator (uuid, now)
  - forward:   accessor name to method name on the stored value

Unrecognized options are rejected when the file is parsed.

# Errors

All errors returned by the engine match one of ErrConfiguration,
ErrMissingRequired, ErrTypeValidation or ErrAccessorUsage with errors.Is.
*/
package schema
