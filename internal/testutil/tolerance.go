package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and every pair of samples is within eps.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, g := range got {
		if d := math.Abs(g - want[i]); d > eps || math.IsNaN(d) {
			t.Fatalf("sample %d = %v, want %v (|diff| %g > %g)", i, g, want[i], d, eps)
		}
	}
}

// RequireChannelsNearlyEqual applies RequireSliceNearlyEqual per channel.
func RequireChannelsNearlyEqual(t testing.TB, got, want [][]float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("channels = %d, want %d", len(got), len(want))
	}
	for ch := range got {
		if len(got[ch]) != len(want[ch]) {
			t.Fatalf("channel %d: len = %d, want %d", ch, len(got[ch]), len(want[ch]))
		}
		for i, g := range got[ch] {
			if d := math.Abs(g - want[ch][i]); d > eps || math.IsNaN(d) {
				t.Fatalf("channel %d sample %d = %v, want %v", ch, i, g, want[ch][i])
			}
		}
	}
}

// RequireFinite fails t on the first NaN or infinity in data.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is %v", i, v)
		}
	}
}
