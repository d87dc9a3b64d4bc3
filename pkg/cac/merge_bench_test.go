package cac

import "testing"

func BenchmarkMerge_DeepNested(b *testing.B) {
	base := map[string]Value{
		"flags": map[string]Value{"a": float64(1), "b": float64(2), "nested": map[string]Value{"x": float64(1)}},
		"tags":  []Value{"a", "b", "c"},
	}
	overlay := map[string]Value{
		"flags": map[string]Value{"b": float64(20), "c": float64(30), "nested": map[string]Value{"y": float64(2)}},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Merge(base, overlay, MergeStrategy)
	}
}

func BenchmarkMerge_Replace(b *testing.B) {
	base := map[string]Value{"flags": map[string]Value{"a": float64(1), "b": float64(2)}}
	overlay := map[string]Value{"flags": map[string]Value{"b": float64(20), "c": float64(30)}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Merge(base, overlay, ReplaceStrategy)
	}
}
