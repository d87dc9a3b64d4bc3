package cac

import (
	"fmt"

	"github.com/google/uuid"
)

// EvalResult is the outcome of EvalCAC: the resolved map plus any
// diagnostics accumulated while walking contexts and overrides.
type EvalResult struct {
	Resolved    map[string]Value
	Diagnostics []Diagnostic
}

// EvalCAC resolves defaults, contexts, and overrides against query under
// strategy, per the algorithm in spec §4.3:
//
//  1. start from a clone of defaults
//  2. for each context in document order, skip if its condition is falsy
//  3. for each override id (in listed order), skip and diagnose if
//     missing from overrides, else apply it with strategy
//
// Later-applied overrides win on key conflicts; a document with no
// matching context returns defaults unchanged (possibly a clone).
func EvalCAC(defaults map[string]Value, contexts []Context, overrides map[string]Value, query map[string]Value, strategy Strategy) EvalResult {
	resolved := cloneMap(defaults)
	if resolved == nil {
		resolved = map[string]Value{}
	}
	var diags []Diagnostic

	for ctxIdx, ctx := range contexts {
		matched, predDiags := Eval(ctx.Condition, query)
		for _, d := range predDiags {
			d.Context = ctxIdx
			diags = append(diags, d)
		}
		if !matched {
			continue
		}
		for _, id := range ctx.OverrideWithKeys {
			overlayRaw, present := overrides[id]
			if !present {
				diags = append(diags, Diagnostic{
					Kind:    DiagDanglingOverrideID,
					Detail:  fmt.Sprintf("override id %q not found", id),
					Context: ctxIdx,
				})
				continue
			}
			overlay, ok := asMap(overlayRaw)
			if !ok {
				diags = append(diags, Diagnostic{
					Kind:    DiagPredicateTypeError,
					Detail:  fmt.Sprintf("override id %q is not a map", id),
					Context: ctxIdx,
				})
				continue
			}
			applyOverlay(resolved, overlay, strategy)
		}
	}

	return EvalResult{Resolved: resolved, Diagnostics: diags}
}

// FieldReasoning records which context/override id supplied the winning
// value for one resolved key.
type FieldReasoning struct {
	Key          string
	ContextIndex int
	OverrideID   string
}

// ReasoningResult is the outcome of EvalCACWithReasoning: the resolved map,
// an append-only per-key attribution trace (final-writer semantics — later
// entries for the same key supersede earlier ones when read by key), a
// correlation id for this evaluation, and diagnostics.
type ReasoningResult struct {
	Resolved    map[string]Value
	Reasoning   []FieldReasoning
	EvalID      string
	Diagnostics []Diagnostic
}

// WinningContext returns, for key, the last FieldReasoning entry recorded
// for it (the winning writer), or false if no context ever touched key.
func (r ReasoningResult) WinningContext(key string) (FieldReasoning, bool) {
	var found FieldReasoning
	ok := false
	for _, fr := range r.Reasoning {
		if fr.Key == key {
			found = fr
			ok = true
		}
	}
	return found, ok
}

// EvalCACWithReasoning is the reasoning-producing sibling of EvalCAC. It is
// not built as a generalization of EvalCAC: the reasoning form tracks
// per-key attribution that plain EvalCAC deliberately elides for speed, so
// the two walk the document independently (spec §9).
func EvalCACWithReasoning(defaults map[string]Value, contexts []Context, overrides map[string]Value, query map[string]Value, strategy Strategy) ReasoningResult {
	resolved := cloneMap(defaults)
	if resolved == nil {
		resolved = map[string]Value{}
	}
	var diags []Diagnostic
	var trace []FieldReasoning

	for ctxIdx, ctx := range contexts {
		matched, predDiags := Eval(ctx.Condition, query)
		for _, d := range predDiags {
			d.Context = ctxIdx
			diags = append(diags, d)
		}
		if !matched {
			continue
		}
		for _, id := range ctx.OverrideWithKeys {
			overlayRaw, present := overrides[id]
			if !present {
				diags = append(diags, Diagnostic{
					Kind:    DiagDanglingOverrideID,
					Detail:  fmt.Sprintf("override id %q not found", id),
					Context: ctxIdx,
				})
				continue
			}
			overlay, ok := asMap(overlayRaw)
			if !ok {
				diags = append(diags, Diagnostic{
					Kind:    DiagPredicateTypeError,
					Detail:  fmt.Sprintf("override id %q is not a map", id),
					Context: ctxIdx,
				})
				continue
			}
			applyOverlay(resolved, overlay, strategy)
			for k := range flattenKeys(overlay) {
				trace = append(trace, FieldReasoning{Key: k, ContextIndex: ctxIdx, OverrideID: id})
			}
		}
	}

	return ReasoningResult{
		Resolved:    resolved,
		Reasoning:   trace,
		EvalID:      uuid.NewString(),
		Diagnostics: diags,
	}
}

// flattenKeys returns the top-level keys touched by an overlay map. Nested
// MERGE recursion can rewrite values deep inside a key's subtree, but
// spec's reasoning trace attributes at the top-level key granularity only
// (spec §4.3: "per applied override key").
func flattenKeys(overlay map[string]Value) map[string]struct{} {
	keys := make(map[string]struct{}, len(overlay))
	for k := range overlay {
		keys[k] = struct{}{}
	}
	return keys
}
