package cac

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Dimension is external metadata about one facet a query predicate can
// reference: its compiled Draft-07 schema and its authoring-tool priority.
// The core never loads or fetches dimensions itself; callers that want
// query validation compile their own schemas and pass a DimensionMap in.
type Dimension struct {
	Name     string
	Schema   *jsonschema.Schema
	Priority int
}

// DimensionMap is name -> Dimension. It is opt-in: a nil or empty map
// disables validation entirely and resolution proceeds unchanged.
type DimensionMap map[string]Dimension

// CompileDimensionSchema compiles a raw Draft-07 JSON Schema document
// (already-marshaled JSON bytes) for use in a DimensionMap entry.
func CompileDimensionSchema(name string, schemaJSON []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	resourceName := fmt.Sprintf("dimension://%s", name)
	if err := compiler.AddResource(resourceName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("cac: compiling schema for dimension %q: %w", name, err)
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("cac: compiling schema for dimension %q: %w", name, err)
	}
	return schema, nil
}

// ValidateQuery checks every key present in both query and dims against
// its compiled schema. Validation failures become diagnostics; they never
// prevent evaluation from proceeding (spec §3: dimension schemas bound
// query *shape* expectations for the publishing UI, the evaluator itself
// stays permissive).
func ValidateQuery(dims DimensionMap, query map[string]Value) []Diagnostic {
	if len(dims) == 0 {
		return nil
	}
	var diags []Diagnostic
	for name, dim := range dims {
		val, present := query[name]
		if !present || dim.Schema == nil {
			continue
		}
		if err := dim.Schema.Validate(val); err != nil {
			diags = append(diags, Diagnostic{
				Kind:    DiagPredicateTypeError,
				Detail:  fmt.Sprintf("dimension %q: query value failed schema validation: %v", name, err),
				Context: -1,
			})
		}
	}
	return diags
}

// Priorities returns the dimension->priority mapping, for callers that
// want to display or log authoring-tool priority metadata. Priority is
// informational only: it never reorders context resolution, which is
// fixed by document order per spec §4.3 (see SPEC_FULL.md §4.7).
func (dm DimensionMap) Priorities() map[string]int {
	out := make(map[string]int, len(dm))
	for name, d := range dm {
		out[name] = d.Priority
	}
	return out
}
