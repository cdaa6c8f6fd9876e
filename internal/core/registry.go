package core

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTable reports a table definition that cannot be registered.
var ErrInvalidTable = errors.New("invalid table definition")

// catalog holds registered tables ordered by group, then key.
var catalog struct {
	sync.RWMutex
	defs []TableDefinition
}

func compareDefs(a, b TableDefinition) int {
	return cmp.Or(cmp.Compare(a.Info.Group, b.Info.Group), cmp.Compare(a.Info.Key, b.Info.Key))
}

// ValidateTable checks that def can be served: a key, a source, distinct
// field names, and display columns that all name a field.
func ValidateTable(def TableDefinition) error {
	key := def.Info.Key
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidTable)
	}
	if def.Source == nil {
		return fmt.Errorf("%w %s: no source", ErrInvalidTable, key)
	}

	names := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w %s: field with empty name", ErrInvalidTable, key)
		}
		if names[f.Name] {
			return fmt.Errorf("%w %s: duplicate field %q", ErrInvalidTable, key, f.Name)
		}
		names[f.Name] = true
	}
	for _, c := range def.Info.Columns {
		if !names[c] {
			return fmt.Errorf("%w %s: column %q has no field", ErrInvalidTable, key, c)
		}
	}
	return nil
}

// Register adds def to the catalog. Columns default to the field order.
// It panics on an invalid definition or a key already registered, since
// tables register from init.
func Register(def TableDefinition) {
	if err := ValidateTable(def); err != nil {
		panic(err)
	}
	if len(def.Info.Columns) == 0 {
		def.Info.Columns = make([]string, len(def.Fields))
		for i, f := range def.Fields {
			def.Info.Columns[i] = f.Name
		}
	}

	catalog.Lock()
	defer catalog.Unlock()

	if slices.ContainsFunc(catalog.defs, func(d TableDefinition) bool { return d.Info.Key == def.Info.Key }) {
		panic(fmt.Errorf("%w %s: already registered", ErrInvalidTable, def.Info.Key))
	}
	i, _ := slices.BinarySearchFunc(catalog.defs, def, compareDefs)
	catalog.defs = slices.Insert(catalog.defs, i, def)
}

// Get returns the table registered under key.
func Get(key string) (TableDefinition, bool) {
	catalog.RLock()
	defer catalog.RUnlock()

	i := slices.IndexFunc(catalog.defs, func(d TableDefinition) bool { return d.Info.Key == key })
	if i < 0 {
		return TableDefinition{}, false
	}
	return catalog.defs[i], true
}

// All returns every table, ordered by group then key.
func All() []TableDefinition {
	catalog.RLock()
	defer catalog.RUnlock()
	return slices.Clone(catalog.defs)
}

// ByGroup returns the tables of one group ordered by key.
func ByGroup(group string) []TableDefinition {
	catalog.RLock()
	defer catalog.RUnlock()

	var out []TableDefinition
	for _, d := range catalog.defs {
		if d.Info.Group == group {
			out = append(out, d)
		}
	}
	return out
}

// Groups returns the distinct group names in order.
func Groups() []string {
	catalog.RLock()
	defer catalog.RUnlock()

	groups := make([]string, len(catalog.defs))
	for i, d := range catalog.defs {
		groups[i] = d.Info.Group
	}
	return slices.Compact(groups)
}

// TableCount returns the number of registered tables.
func TableCount() int {
	catalog.RLock()
	defer catalog.RUnlock()
	return len(catalog.defs)
}

// Clear empties the catalog. Tests use it to register their own tables.
func Clear() {
	catalog.Lock()
	catalog.defs = nil
	catalog.Unlock()
}
