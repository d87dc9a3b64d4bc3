package cac

import (
	"fmt"
	"strings"
)

// DiagnosticKind distinguishes the non-fatal issues evaluation can surface
// without aborting the sibling contexts around it.
type DiagnosticKind string

const (
	// DiagPredicateTypeError is recorded when an operator receives operands
	// of the wrong shape (e.g. "<=" on a non-numeric argument).
	DiagPredicateTypeError DiagnosticKind = "predicate_type_error"

	// DiagUnknownOperator is recorded when a predicate node names an
	// operator outside the closed vocabulary in spec §4.1. The predicate
	// vocabulary is fixed; an unrecognized operator is a document error,
	// and the owning context is treated as non-matching.
	DiagUnknownOperator DiagnosticKind = "unknown_operator"

	// DiagDanglingOverrideID is recorded when a context's
	// override_with_keys names an id missing from the overrides table.
	DiagDanglingOverrideID DiagnosticKind = "dangling_override_id"
)

// Diagnostic is a non-fatal issue surfaced during evaluation. Diagnostics
// never abort evaluation; they degrade the affected context to "did not
// match" or the affected override id to "skipped".
type Diagnostic struct {
	Kind    DiagnosticKind
	Detail  string
	Context int // index into the document's Contexts slice, -1 if n/a
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
}

// truthy implements spec §4.1's truthiness table: false, null, 0, "", an
// empty array, and an empty map are falsy; everything else is truthy.
func truthy(v Value) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	case []Value:
		return len(t) > 0
	case map[string]Value:
		return len(t) > 0
	default:
		return true
	}
}

// asNumber reports whether v is a JSON number and returns its float64
// value.
func asNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// valueEqual implements JSON-level equality: numbers compare by value
// regardless of underlying Go numeric type, everything else by ==, maps
// and arrays by structural equality.
func valueEqual(a, b Value) bool {
	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an == bn
		}
		return false
	}
	switch at := a.(type) {
	case []Value:
		bt, ok := b.([]Value)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valueEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	case map[string]Value:
		bt, ok := b.(map[string]Value)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, present := bt[k]
			if !present || !valueEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// evalPredicate evaluates a predicate tree against query, appending any
// diagnostics produced along the way to diags (which may be nil).
//
// A predicate node is either:
//   - {"var": "<name>"}, a variable leaf resolved against query,
//   - a single-key map whose key is an operator name, or
//   - any other Value, which evaluates to itself (a literal leaf).
func evalPredicate(pred Value, query map[string]Value, diags *[]Diagnostic) Value {
	m, ok := asMap(pred)
	if !ok {
		return pred
	}
	if len(m) != 1 {
		// Not a recognized operator/var node shape; treat as a literal map.
		return pred
	}
	for op, rawArgs := range m {
		if op == "var" {
			name, _ := rawArgs.(string)
			val, present := query[name]
			if !present {
				return nil
			}
			return val
		}
		args, _ := rawArgs.([]Value)
		return evalOperator(op, args, query, diags)
	}
	return pred
}

func evalOperator(op string, args []Value, query map[string]Value, diags *[]Diagnostic) Value {
	switch op {
	case "==":
		if len(args) != 2 {
			addDiag(diags, DiagPredicateTypeError, fmt.Sprintf("== expects 2 args, got %d", len(args)))
			return false
		}
		left := evalPredicate(args[0], query, diags)
		right := evalPredicate(args[1], query, diags)
		return valueEqual(left, right)

	case "and":
		if len(args) == 0 {
			addDiag(diags, DiagPredicateTypeError, "and expects at least 1 arg")
			return false
		}
		for _, a := range args {
			if !truthy(evalPredicate(a, query, diags)) {
				return false
			}
		}
		return true

	case "or":
		if len(args) == 0 {
			addDiag(diags, DiagPredicateTypeError, "or expects at least 1 arg")
			return false
		}
		for _, a := range args {
			if truthy(evalPredicate(a, query, diags)) {
				return true
			}
		}
		return false

	case "<=":
		if len(args) != 3 {
			addDiag(diags, DiagPredicateTypeError, fmt.Sprintf("<= expects 3 args, got %d", len(args)))
			return false
		}
		low, lok := asNumber(evalPredicate(args[0], query, diags))
		x, xok := asNumber(evalPredicate(args[1], query, diags))
		high, hok := asNumber(evalPredicate(args[2], query, diags))
		if !lok || !xok || !hok {
			addDiag(diags, DiagPredicateTypeError, "<= requires numeric operands")
			return false
		}
		return low <= x && x <= high

	case "in":
		if len(args) != 2 {
			addDiag(diags, DiagPredicateTypeError, fmt.Sprintf("in expects 2 args, got %d", len(args)))
			return false
		}
		needle := evalPredicate(args[0], query, diags)
		haystack := evalPredicate(args[1], query, diags)
		return evalIn(needle, haystack, diags)

	default:
		addDiag(diags, DiagUnknownOperator, op)
		return false
	}
}

func evalIn(needle, haystack Value, diags *[]Diagnostic) bool {
	if arr, ok := haystack.([]Value); ok {
		for _, e := range arr {
			if valueEqual(needle, e) {
				return true
			}
		}
		return false
	}
	if hs, ok := haystack.(string); ok {
		ns, ok := needle.(string)
		if !ok {
			addDiag(diags, DiagPredicateTypeError, "in: string haystack requires string needle")
			return false
		}
		return strings.Contains(hs, ns)
	}
	addDiag(diags, DiagPredicateTypeError, "in: arg1 must be array or string")
	return false
}

func addDiag(diags *[]Diagnostic, kind DiagnosticKind, detail string) {
	if diags == nil {
		return
	}
	*diags = append(*diags, Diagnostic{Kind: kind, Detail: detail, Context: -1})
}

// Eval evaluates a predicate tree against a query map and reports whether
// it is truthy, along with any diagnostics produced. It is exported for
// callers (and tests) that want to evaluate a single predicate outside a
// full document resolution.
func Eval(pred Value, query map[string]Value) (bool, []Diagnostic) {
	var diags []Diagnostic
	result := evalPredicate(pred, query, &diags)
	return truthy(result), diags
}
