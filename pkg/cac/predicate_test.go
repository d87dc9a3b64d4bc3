package cac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_VarLeaf(t *testing.T) {
	ok, diags := Eval(map[string]Value{"var": "tier"}, map[string]Value{"tier": "gold"})
	assert.True(t, ok)
	assert.Empty(t, diags)
}

func TestEval_VarLeafMissingBindsNull(t *testing.T) {
	// {"==":[{"var":"x"}, 1]} against {} => false (var resolves to null).
	pred := map[string]Value{"==": []Value{map[string]Value{"var": "x"}, float64(1)}}
	ok, _ := Eval(pred, map[string]Value{})
	assert.False(t, ok)
}

func TestEval_Equality(t *testing.T) {
	pred := map[string]Value{"==": []Value{map[string]Value{"var": "tier"}, "gold"}}
	ok, _ := Eval(pred, map[string]Value{"tier": "gold"})
	assert.True(t, ok)

	ok, _ = Eval(pred, map[string]Value{"tier": "silver"})
	assert.False(t, ok)
}

func TestEval_AndShortCircuits(t *testing.T) {
	pred := map[string]Value{"and": []Value{true, false, true}}
	ok, _ := Eval(pred, nil)
	assert.False(t, ok)

	pred = map[string]Value{"and": []Value{true, true}}
	ok, _ = Eval(pred, nil)
	assert.True(t, ok)

	// The unknown operator after the falsy arg is never evaluated, so it
	// records no diagnostic.
	pred = map[string]Value{"and": []Value{false, map[string]Value{"xor": []Value{true}}}}
	ok, diags := Eval(pred, nil)
	assert.False(t, ok)
	assert.Empty(t, diags)
}

func TestEval_Or(t *testing.T) {
	pred := map[string]Value{"or": []Value{false, false, true}}
	ok, _ := Eval(pred, nil)
	assert.True(t, ok)

	pred = map[string]Value{"or": []Value{false, false}}
	ok, _ = Eval(pred, nil)
	assert.False(t, ok)
}

func TestEval_Range(t *testing.T) {
	pred := map[string]Value{"<=": []Value{float64(1), map[string]Value{"var": "x"}, float64(10)}}
	ok, diags := Eval(pred, map[string]Value{"x": float64(5)})
	require.Empty(t, diags)
	assert.True(t, ok)

	ok, _ = Eval(pred, map[string]Value{"x": float64(11)})
	assert.False(t, ok)
}

func TestEval_RangeNonNumericIsFalseWithDiagnostic(t *testing.T) {
	pred := map[string]Value{"<=": []Value{float64(1), "not-a-number", float64(10)}}
	ok, diags := Eval(pred, nil)
	assert.False(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagPredicateTypeError, diags[0].Kind)
}

func TestEval_InArray(t *testing.T) {
	pred := map[string]Value{"in": []Value{map[string]Value{"var": "region"}, []Value{"us", "eu"}}}
	ok, _ := Eval(pred, map[string]Value{"region": "eu"})
	assert.True(t, ok)

	ok, _ = Eval(pred, map[string]Value{"region": "apac"})
	assert.False(t, ok)
}

func TestEval_InSubstring(t *testing.T) {
	pred := map[string]Value{"in": []Value{"gold", map[string]Value{"var": "tier_name"}}}
	ok, _ := Eval(pred, map[string]Value{"tier_name": "super-gold-tier"})
	assert.True(t, ok)
}

func TestEval_Literal(t *testing.T) {
	ok, diags := Eval(true, nil)
	assert.True(t, ok)
	assert.Empty(t, diags)

	ok, _ = Eval(float64(0), nil)
	assert.False(t, ok)
}

func TestEval_UnknownOperatorIsFalseWithDiagnostic(t *testing.T) {
	pred := map[string]Value{"xor": []Value{true, false}}
	ok, diags := Eval(pred, nil)
	assert.False(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagUnknownOperator, diags[0].Kind)
}

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"false", false, false},
		{"null", nil, false},
		{"zero", float64(0), false},
		{"empty string", "", false},
		{"empty array", []Value{}, false},
		{"empty map", map[string]Value{}, false},
		{"nonzero", float64(1), true},
		{"nonempty string", "x", true},
		{"nonempty array", []Value{1}, true},
		{"nonempty map", map[string]Value{"a": 1}, true},
		{"true", true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, truthy(tc.v))
		})
	}
}
