package cmatrix

import (
	"fmt"
	"math"
	"testing"
)

func TestSVDReconstructs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *Dense
	}{
		{a: FromRows([][]complex128{{1, 0}, {0, 1}})},
		{a: FromRows([][]complex128{{0, 1i}, {1, 0}})},
		{a: FromRows([][]complex128{{1, 2, 3}, {4, 5i, 6}})},
		{a: FromRows([][]complex128{{0.70710678, 0.70710678}, {0.70710678, -0.70710678}})},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			u, s, vDag := SVD(test.a)
			got := Mul(Mul(u, s), vDag)
			if !got.Equal(test.a, 1e-6) {
				t.Fatalf("reconstruction mismatch: got %v, want %v", got.data, test.a.data)
			}
		})
	}
}

func TestSVDSingularValuesDescending(t *testing.T) {
	t.Parallel()
	a := FromRows([][]complex128{{3, 0}, {0, 1}, {0, 0}})
	sv := SingularValues(a)
	if len(sv) != 2 {
		t.Fatalf("expected 2 singular values, got %d", len(sv))
	}
	if math.Abs(sv[0]-3) > 1e-6 || math.Abs(sv[1]-1) > 1e-6 {
		t.Fatalf("got %v, want [3 1]", sv)
	}
	for i := 1; i < len(sv); i++ {
		if sv[i-1] < sv[i] {
			t.Fatalf("singular values not descending: %v", sv)
		}
	}
}

func TestSVDUnitaryFactors(t *testing.T) {
	t.Parallel()
	a := FromRows([][]complex128{{1, 2i, 0}, {0, 1, 3}, {2, 0, 1i}})
	u, _, vDag := SVD(a)
	if !u.IsUnitary(1e-6) {
		t.Fatalf("U is not unitary: %v", u.data)
	}
	v := vDag.Dagger()
	if !v.IsUnitary(1e-6) {
		t.Fatalf("V is not unitary: %v", v.data)
	}
}
