package cac

import "strings"

// Strategy selects how an overlay map is combined onto a base map.
type Strategy int

const (
	// MergeStrategy recurses into nested maps shared by base and overlay;
	// arrays and scalars are replaced wholesale. This is the default.
	MergeStrategy Strategy = iota

	// ReplaceStrategy replaces every overlay key wholesale, never
	// recursing even when both sides hold a map.
	ReplaceStrategy
)

func (s Strategy) String() string {
	if s == ReplaceStrategy {
		return "replace"
	}
	return "merge"
}

// ParseStrategy parses a user-supplied strategy name, case-insensitively.
// Any string other than "merge" or "replace" falls back to the default
// (MergeStrategy) rather than erroring, per spec §4.2.
func ParseStrategy(s string) Strategy {
	switch strings.ToLower(s) {
	case "replace":
		return ReplaceStrategy
	case "merge":
		return MergeStrategy
	default:
		return MergeStrategy
	}
}

// Merge combines overlay onto a clone of base under strategy and returns
// the result; base and overlay are never mutated.
func Merge(base, overlay map[string]Value, strategy Strategy) map[string]Value {
	resolved := cloneMap(base)
	if resolved == nil {
		resolved = map[string]Value{}
	}
	applyOverlay(resolved, overlay, strategy)
	return resolved
}

// applyOverlay mutates resolved in place, applying overlay under strategy.
func applyOverlay(resolved map[string]Value, overlay map[string]Value, strategy Strategy) {
	for k, ov := range overlay {
		if strategy == MergeStrategy {
			if baseMap, baseIsMap := asMap(resolved[k]); baseIsMap {
				if overlayMap, overlayIsMap := asMap(ov); overlayIsMap {
					merged := cloneMap(baseMap)
					applyOverlay(merged, overlayMap, strategy)
					resolved[k] = merged
					continue
				}
			}
		}
		resolved[k] = cloneValue(ov)
	}
}
