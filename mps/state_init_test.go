package mps

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

func TestNewStateFromVectorRoundTrips(t *testing.T) {
	t.Parallel()
	sqrt2 := complex(0.7071067811865476, 0)
	sqrt8 := complex(1/2.8284271247461903, 0)
	tests := []struct {
		name string
		n    int
		v    []complex128
	}{
		{name: "basis", n: 2, v: []complex128{0, 1, 0, 0}},
		{name: "bell", n: 2, v: []complex128{sqrt2, 0, 0, sqrt2}},
		{
			name: "ghz3",
			n:    3,
			v:    []complex128{sqrt2, 0, 0, 0, 0, 0, 0, sqrt2},
		},
		{
			name: "uniform3",
			n:    3,
			v:    []complex128{sqrt8, sqrt8, sqrt8, sqrt8, sqrt8, sqrt8, sqrt8, sqrt8},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewStateFromVector(test.n, test.v, NewConfig(), rand.New(rand.NewSource(1)))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			got := s.FullStateVector()
			for i := range test.v {
				if !approxEqualC(got[i], test.v[i]) {
					t.Fatalf("got %v, want %v", got, test.v)
				}
			}
		})
	}
}

func TestNewStateFromVectorRejectsBadNorm(t *testing.T) {
	t.Parallel()
	_, err := NewStateFromVector(1, []complex128{1, 1}, NewConfig(), rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("expected error for non-normalized vector")
	}
}

func TestNewStateFromVectorRejectsWrongLength(t *testing.T) {
	t.Parallel()
	_, err := NewStateFromVector(2, []complex128{1, 0, 0}, NewConfig(), rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("expected error for wrong-length vector")
	}
}

func TestInitializeFromCopiesMatchingQubitCount(t *testing.T) {
	t.Parallel()
	src := bellState(t)
	dst, err := NewState(2, NewConfig(), rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := dst.InitializeFrom(src); err != nil {
		t.Fatalf("%+v", err)
	}
	got, want := dst.FullStateVector(), src.FullStateVector()
	for i := range want {
		if !approxEqualC(got[i], want[i]) {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInitializeFromRejectsFewerSourceQubitsAsPartial(t *testing.T) {
	t.Parallel()
	src, err := NewState(1, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	dst, err := NewState(2, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := dst.InitializeFrom(src); !errors.Is(err, ErrPartialInitialization) {
		t.Fatalf("got %v, want an error matching ErrPartialInitialization", err)
	}
}

func TestInitializeFromRejectsMoreSourceQubitsAsInvalid(t *testing.T) {
	t.Parallel()
	src, err := NewState(3, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	dst, err := NewState(2, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := dst.InitializeFrom(src); !errors.Is(err, ErrInvalidQubit) {
		t.Fatalf("got %v, want an error matching ErrInvalidQubit", err)
	}
}

func TestNewStateFromVectorBondDimensionBound(t *testing.T) {
	t.Parallel()
	sqrt8 := complex(1/2.8284271247461903, 0)
	v := make([]complex128, 8)
	for i := range v {
		v[i] = sqrt8
	}
	s, err := NewStateFromVector(3, v, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// min(2^min(k+1,N-k-1), D_max) with D_max unbounded: bond 0 (k=0) <= 2,
	// bond 1 (k=1) <= 2.
	for k, b := range s.bonds {
		bound := 1 << min(k+1, s.NumQubits()-k-1)
		if b.Dim() > bound {
			t.Fatalf("bond %d has dimension %d, exceeds bound %d", k, b.Dim(), bound)
		}
	}
}
