package cac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, ReplaceStrategy, ParseStrategy("replace"))
	assert.Equal(t, ReplaceStrategy, ParseStrategy("REPLACE"))
	assert.Equal(t, MergeStrategy, ParseStrategy("merge"))
	assert.Equal(t, MergeStrategy, ParseStrategy("MERGE"))
	assert.Equal(t, MergeStrategy, ParseStrategy("garbage"))
	assert.Equal(t, MergeStrategy, ParseStrategy(""))
}

func TestParseStrategy_RoundTrip(t *testing.T) {
	for _, s := range []string{"merge", "MERGE", "Merge", "replace", "REPLACE"} {
		got := ParseStrategy(s).String()
		assert.Equal(t, ParseStrategy(got), ParseStrategy(s))
	}
}

func TestMerge_ReplaceWholesale(t *testing.T) {
	base := map[string]Value{"flags": map[string]Value{"a": float64(1), "b": float64(2)}}
	overlay := map[string]Value{"flags": map[string]Value{"b": float64(20), "c": float64(30)}}

	got := Merge(base, overlay, ReplaceStrategy)
	assert.Equal(t, map[string]Value{"flags": map[string]Value{"b": float64(20), "c": float64(30)}}, got)
}

func TestMerge_DeepForMaps(t *testing.T) {
	base := map[string]Value{"flags": map[string]Value{"a": float64(1), "b": float64(2)}}
	overlay := map[string]Value{"flags": map[string]Value{"b": float64(20), "c": float64(30)}}

	got := Merge(base, overlay, MergeStrategy)
	assert.Equal(t, map[string]Value{"flags": map[string]Value{"a": float64(1), "b": float64(20), "c": float64(30)}}, got)
}

func TestMerge_ArraysReplacedNotConcatenated(t *testing.T) {
	base := map[string]Value{"tags": []Value{"a", "b"}}
	overlay := map[string]Value{"tags": []Value{"c"}}

	got := Merge(base, overlay, MergeStrategy)
	assert.Equal(t, []Value{"c"}, got["tags"])
}

func TestMerge_IncompatibleShapesReplaceUnderMerge(t *testing.T) {
	base := map[string]Value{"x": map[string]Value{"a": float64(1)}}
	overlay := map[string]Value{"x": "scalar-now"}

	got := Merge(base, overlay, MergeStrategy)
	assert.Equal(t, "scalar-now", got["x"])
}

func TestMerge_EmptyOverlayIsIdentity(t *testing.T) {
	base := map[string]Value{"a": float64(1), "b": "two"}
	for _, s := range []Strategy{MergeStrategy, ReplaceStrategy} {
		got := Merge(base, map[string]Value{}, s)
		assert.Equal(t, base, got)
	}
}

func TestMerge_StrategySubsumptionOnNonMapValues(t *testing.T) {
	base := map[string]Value{"a": float64(1), "b": "two", "c": []Value{float64(1), float64(2)}}
	overlay := map[string]Value{"a": float64(9), "c": []Value{float64(3)}}

	gotMerge := Merge(base, overlay, MergeStrategy)
	gotReplace := Merge(base, overlay, ReplaceStrategy)
	assert.Equal(t, gotReplace, gotMerge)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]Value{"flags": map[string]Value{"a": float64(1)}}
	overlay := map[string]Value{"flags": map[string]Value{"b": float64(2)}}

	_ = Merge(base, overlay, MergeStrategy)

	assert.Equal(t, map[string]Value{"flags": map[string]Value{"a": float64(1)}}, base)
	assert.Equal(t, map[string]Value{"flags": map[string]Value{"b": float64(2)}}, overlay)
}
