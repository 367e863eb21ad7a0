package registry

import (
	"fmt"

	"github.com/artpar/slotkit/core/runtime"
	"github.com/artpar/slotkit/core/schema"
)

// Load declares parsed class definitions. Ancestors are resolved lazily, so
// definitions may appear in any order. Load stops at the first error.
func (r *Registry) Load(defs []schema.Definition) error {
	for _, def := range defs {
		if err := r.loadDefinition(def); err != nil {
			if def.Source != "" {
				return fmt.Errorf("%s: %w", def.Source, err)
			}
			return err
		}
	}
	return nil
}

func (r *Registry) loadDefinition(def schema.Definition) error {
	var parents []string
	if def.Extends != "" {
		parents = append(parents, def.Extends)
	}
	if err := r.Declare(def.Class, parents...); err != nil {
		return err
	}

	r.mu.Lock()
	if e, ok := r.entries[def.Class]; ok && def.Source != "" {
		e.source = def.Source
	}
	r.mu.Unlock()

	for _, sd := range def.Slots {
		opts, err := sd.Options(runtime.InstanceOf)
		if err != nil {
			return &schema.ConfigurationError{Class: def.Class, Field: sd.Name, Reason: "invalid slot definition", Err: err}
		}
		if err := r.Slot(def.Class, sd.Name, nil, opts); err != nil {
			return err
		}
	}

	r.logger.Debug().
		Str("class", def.Class).
		Str("source", def.Source).
		Int("slots", len(def.Slots)).
		Msg("class definition loaded")
	return nil
}

// LoadDir parses every definition file under dir and loads it.
func (r *Registry) LoadDir(dir string) error {
	defs, err := schema.ParseDir(dir)
	if err != nil {
		return err
	}
	return r.Load(defs)
}
