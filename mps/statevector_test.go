package mps

import (
	"math/rand"
	"testing"
)

func TestFullStateVectorChopsSmallComponents(t *testing.T) {
	t.Parallel()
	s, err := NewState(1, NewConfig().ChopThreshold(0.5), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// A tiny rotation leaves a small-but-nonzero amplitude on |1>, which a
	// chop threshold of 0.5 should zero out entirely.
	if err := s.ApplyGate("u3", []int{0}, []float64{0.001, 0, 0}); err != nil {
		t.Fatalf("%+v", err)
	}
	v := s.FullStateVector()
	if v[1] != 0 {
		t.Fatalf("got %v, want amplitude on |1> chopped to exactly 0", v[1])
	}
}

func TestFullStateVectorLengthMatchesQubitCount(t *testing.T) {
	t.Parallel()
	s, err := NewState(4, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	v := s.FullStateVector()
	if len(v) != 16 {
		t.Fatalf("len(v) = %d, want 16", len(v))
	}
}
