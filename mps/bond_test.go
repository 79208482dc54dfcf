package mps

import (
	"fmt"
	"testing"
)

func TestTruncateDiscardsBelowThresholdAndRescales(t *testing.T) {
	t.Parallel()
	cfg := NewConfig().TruncationThreshold(0.1)
	sv := []float64{0.9, 0.4, 0.05, 0.01}
	bond, keep := Truncate(sv, cfg)
	if keep != 2 {
		t.Fatalf("keep = %d, want 2", keep)
	}
	if !approxEqual(bond.SumSquares(), 1) {
		t.Fatalf("Σλ² = %g, want 1", bond.SumSquares())
	}
}

func TestTruncateRespectsMaxBondDimension(t *testing.T) {
	t.Parallel()
	cfg := NewConfig().MaxBondDimension(2)
	sv := []float64{0.9, 0.8, 0.7, 0.6}
	_, keep := Truncate(sv, cfg)
	if keep != 2 {
		t.Fatalf("keep = %d, want 2", keep)
	}
}

func TestTruncateNeverReturnsZeroDimension(t *testing.T) {
	t.Parallel()
	cfg := NewConfig().TruncationThreshold(10)
	sv := []float64{0.9, 0.1}
	_, keep := Truncate(sv, cfg)
	if keep != 1 {
		t.Fatalf("keep = %d, want 1", keep)
	}
}

func TestBondInverseClampsNearZero(t *testing.T) {
	t.Parallel()
	tests := []struct {
		values []float64
		guard  float64
		want   []float64
	}{
		{values: []float64{0.5, 1e-10}, guard: 1e-6, want: []float64{2, 0}},
		{values: []float64{1}, guard: 1e-6, want: []float64{1}},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			b := NewBond(test.values)
			got := b.Inverse(test.guard)
			for j := range test.want {
				if !approxEqual(got[j], test.want[j]) {
					t.Fatalf("got %v, want %v", got, test.want)
				}
			}
		})
	}
}

func TestTrivialBondHasUnitDimensionAndValue(t *testing.T) {
	t.Parallel()
	b := trivialBond()
	if b.Dim() != 1 {
		t.Fatalf("Dim() = %d, want 1", b.Dim())
	}
	if b.Values()[0] != 1 {
		t.Fatalf("Values()[0] = %g, want 1", b.Values()[0])
	}
}
