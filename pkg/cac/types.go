// Package cac implements the context-aware configuration predicate
// language, merge primitive, and context resolver.
//
// It is pure and re-entrant: no I/O, no mutable package-level state beyond
// the diagnostic buffers returned alongside each result. The polling
// client in pkg/cacclient is the only caller that touches the network.
package cac

// Value is any JSON value produced by encoding/json: nil, bool, float64,
// string, []any, or map[string]any. The evaluator and merge primitive both
// operate directly on these dynamically-typed values rather than a custom
// tagged union, matching how the document arrives off the wire.
type Value = any

// Document is a tenant's full configuration: defaults, the ordered list of
// predicate-guarded contexts, and the override table contexts refer into.
type Document struct {
	DefaultConfigs map[string]Value `json:"default_configs"`
	Contexts       []Context        `json:"contexts"`
	Overrides      map[string]Value `json:"overrides"`
}

// Context pairs a predicate with the overrides to apply when it matches.
// OverrideWithKeys is applied in listed order (spec widens the original
// single-id field to a sequence).
type Context struct {
	Condition        Value    `json:"condition"`
	OverrideWithKeys []string `json:"override_with_keys"`
}

// Clone returns a deep copy of the document's maps so callers holding a
// snapshot never observe a resolver mutating defaults or overrides in
// place.
func (d Document) Clone() Document {
	return Document{
		DefaultConfigs: cloneMap(d.DefaultConfigs),
		Contexts:       cloneContexts(d.Contexts),
		Overrides:      cloneOverrides(d.Overrides),
	}
}

func cloneContexts(cs []Context) []Context {
	if cs == nil {
		return nil
	}
	out := make([]Context, len(cs))
	for i, c := range cs {
		keys := make([]string, len(c.OverrideWithKeys))
		copy(keys, c.OverrideWithKeys)
		out[i] = Context{Condition: cloneValue(c.Condition), OverrideWithKeys: keys}
	}
	return out
}

func cloneOverrides(o map[string]Value) map[string]Value {
	if o == nil {
		return nil
	}
	out := make(map[string]Value, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneMap(m map[string]Value) map[string]Value {
	if m == nil {
		return nil
	}
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch t := v.(type) {
	case map[string]Value:
		return cloneMap(t)
	case []Value:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// asMap converts a Value that must already be a JSON object into
// map[string]Value, returning ok=false otherwise.
func asMap(v Value) (map[string]Value, bool) {
	m, ok := v.(map[string]Value)
	return m, ok
}
