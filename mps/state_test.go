package mps

import (
	"math/rand"
	"testing"

	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

func bellState(t *testing.T) *State {
	t.Helper()
	s, err := NewState(2, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.ApplyGate("h", []int{0}, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.ApplyGate("cx", []int{0, 1}, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	return s
}

func TestApply1QFlipsBasisState(t *testing.T) {
	t.Parallel()
	s, err := NewState(1, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.ApplyGate("x", []int{0}, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	v := s.FullStateVector()
	if !approxEqualC(v[0], 0) || !approxEqualC(v[1], 1) {
		t.Fatalf("got %v, want [0 1]", v)
	}
}

func TestApply2QAdjacentBuildsBellState(t *testing.T) {
	t.Parallel()
	s := bellState(t)
	v := s.FullStateVector()
	want := []complex128{complex(0.7071067811865476, 0), 0, 0, complex(0.7071067811865476, 0)}
	for i := range want {
		if !approxEqualC(v[i], want[i]) {
			t.Fatalf("got %v, want %v", v, want)
		}
	}
	if s.bonds[0].Dim() != 2 {
		t.Fatalf("bond dimension = %d, want 2", s.bonds[0].Dim())
	}
}

func TestApplyMatrixRoutesNonAdjacentCX(t *testing.T) {
	t.Parallel()
	s, err := NewState(3, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.ApplyGate("h", []int{0}, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.ApplyGate("cx", []int{0, 2}, nil); err != nil {
		t.Fatalf("%+v", err)
	}

	probs02, err := s.Probabilities([]int{0, 2})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := []float64{0.5, 0, 0, 0.5}
	for i := range want {
		if !approxEqual(probs02[i], want[i]) {
			t.Fatalf("P(0,2) = %v, want %v", probs02, want)
		}
	}

	probs1, err := s.Probabilities([]int{1})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !approxEqual(probs1[0], 1) || !approxEqual(probs1[1], 0) {
		t.Fatalf("P(1) = %v, want [1 0]", probs1)
	}

	// The swap route and its reversal leave the chain at three sites; the
	// marginals above already pin each qubit back to its own site.
	if s.NumQubits() != 3 {
		t.Fatalf("NumQubits() = %d, want 3", s.NumQubits())
	}
}

func TestApplyDiagonalPreservesBondDimension(t *testing.T) {
	t.Parallel()
	s := bellState(t)
	before := s.bonds[0].Dim()
	if err := s.ApplyDiagonal([]int{0, 1}, []complex128{1, 1, 1, -1}); err != nil {
		t.Fatalf("%+v", err)
	}
	if s.bonds[0].Dim() != before {
		t.Fatalf("bond dimension changed from %d to %d", before, s.bonds[0].Dim())
	}
}

func TestApply1QRejectsNonUnitary(t *testing.T) {
	t.Parallel()
	s, err := NewState(1, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	notUnitary := cmatrix.FromRows([][]complex128{{1, 1}, {0, 1}})
	if err := s.Apply1Q(0, notUnitary); !errors.Is(err, ErrNotUnitary) {
		t.Fatalf("got %v, want an error matching ErrNotUnitary", err)
	}
}

func TestApply2QAdjacentRejectsNonUnitary(t *testing.T) {
	t.Parallel()
	s, err := NewState(2, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	notUnitary := cmatrix.Identity(4)
	notUnitary.Set(0, 1, 1)
	if err := s.Apply2QAdjacent(0, notUnitary); !errors.Is(err, ErrNotUnitary) {
		t.Fatalf("got %v, want an error matching ErrNotUnitary", err)
	}
}

func TestCheckQubitsRejectsDuplicatesAndOutOfRange(t *testing.T) {
	t.Parallel()
	s, err := NewState(2, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.checkQubits([]int{0, 0}); err == nil {
		t.Fatalf("expected error for duplicate qubit")
	}
	if err := s.checkQubits([]int{0, 2}); err == nil {
		t.Fatalf("expected error for out-of-range qubit")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	s := bellState(t)
	clone := s.Clone()
	if err := clone.ApplyGate("x", []int{0}, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	orig := s.FullStateVector()
	if !approxEqualC(orig[0], complex(0.7071067811865476, 0)) {
		t.Fatalf("mutating clone affected original: %v", orig)
	}
}

func TestToffoliTruthTable(t *testing.T) {
	t.Parallel()
	for c0 := 0; c0 < 2; c0++ {
		for c1 := 0; c1 < 2; c1++ {
			for target := 0; target < 2; target++ {
				s, err := NewState(3, NewConfig(), rand.New(rand.NewSource(1)))
				if err != nil {
					t.Fatalf("%+v", err)
				}
				if c0 == 1 {
					s.ApplyGate("x", []int{0}, nil)
				}
				if c1 == 1 {
					s.ApplyGate("x", []int{1}, nil)
				}
				if target == 1 {
					s.ApplyGate("x", []int{2}, nil)
				}
				if err := s.ApplyGate("ccx", []int{0, 1, 2}, nil); err != nil {
					t.Fatalf("%+v", err)
				}
				wantTarget := target
				if c0 == 1 && c1 == 1 {
					wantTarget = 1 - target
				}
				v := s.FullStateVector()
				wantIdx := c0 + 2*c1 + 4*wantTarget
				for i, c := range v {
					want := 0.0
					if i == wantIdx {
						want = 1
					}
					if !approxEqual(real(c), want) {
						t.Fatalf("c0=%d c1=%d target=%d: v=%v, want 1 at index %d", c0, c1, target, v, wantIdx)
					}
				}
			}
		}
	}
}
