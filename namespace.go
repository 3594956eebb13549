package argot

import "sort"

// Namespace holds the values one invocation resolved, keyed by
// positional name or by modifier alias (every alias of a modifier maps
// to the same value). Warnings raised during the pass ride along.
type Namespace struct {
	values   map[string]any
	warnings []*Fault
}

// Has reports whether the key was resolved or materialized.
func (ns *Namespace) Has(key string) bool {
	_, ok := ns.values[key]
	return ok
}

// Get returns the raw value for the key.
func (ns *Namespace) Get(key string) (any, bool) {
	v, ok := ns.values[key]
	return v, ok
}

// GetString returns the value as a string, or "" when absent or of a
// different type.
func (ns *Namespace) GetString(key string) string {
	if s, ok := ns.values[key].(string); ok {
		return s
	}
	return ""
}

// GetInt returns the value as an int, or 0.
func (ns *Namespace) GetInt(key string) int {
	if n, ok := ns.values[key].(int); ok {
		return n
	}
	return 0
}

// GetFloat returns the value as a float64, or 0.
func (ns *Namespace) GetFloat(key string) float64 {
	if f, ok := ns.values[key].(float64); ok {
		return f
	}
	return 0
}

// GetBool returns the value as a bool, or false.
func (ns *Namespace) GetBool(key string) bool {
	if b, ok := ns.values[key].(bool); ok {
		return b
	}
	return false
}

// GetList returns the elements of a multi-valued argument, or nil.
func (ns *Namespace) GetList(key string) []any {
	if vs, ok := ns.values[key].([]any); ok {
		out := make([]any, len(vs))
		copy(out, vs)
		return out
	}
	return nil
}

// GetStrings returns the elements of a multi-valued string argument.
// Non-string elements are skipped.
func (ns *Namespace) GetStrings(key string) []string {
	vs, ok := ns.values[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Keys returns every resolved key, sorted.
func (ns *Namespace) Keys() []string {
	keys := make([]string, 0, len(ns.values))
	for k := range ns.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of resolved keys, alias mirrors included.
func (ns *Namespace) Len() int { return len(ns.values) }

// Warnings returns the recoverable diagnostics raised during the pass.
func (ns *Namespace) Warnings() []*Fault {
	out := make([]*Fault, len(ns.warnings))
	copy(out, ns.warnings)
	return out
}
