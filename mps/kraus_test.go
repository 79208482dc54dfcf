package mps

import (
	"math/rand"
	"testing"

	"github.com/fumin/qmps/cmatrix"
)

func plusState(t *testing.T) *State {
	t.Helper()
	s, err := NewState(1, NewConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.ApplyGate("h", []int{0}, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	return s
}

func phaseFlipKraus(p float64) []*cmatrix.Dense {
	i := cmatrix.Identity(2).Scale(complex(sqrtF(1-p), 0))
	z := cmatrix.FromRows([][]complex128{{1, 0}, {0, -1}}).Scale(complex(sqrtF(p), 0))
	return []*cmatrix.Dense{i, z}
}

func sqrtF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	lo, hi := 0.0, 1.0
	if x > 1 {
		hi = x
	}
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if mid*mid < x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func TestApplyKrausForcedBranchProducesMinusState(t *testing.T) {
	t.Parallel()
	s := plusState(t)
	s.rng = &fixedSource{draws: []float64{0.99}}
	ks := phaseFlipKraus(0.5)
	if err := s.ApplyKraus([]int{0}, ks); err != nil {
		t.Fatalf("%+v", err)
	}
	v := s.FullStateVector()
	want := []complex128{complex(0.7071067811865476, 0), complex(-0.7071067811865476, 0)}
	for i := range want {
		if !approxEqualC(v[i], want[i]) {
			t.Fatalf("got %v, want %v", v, want)
		}
	}
}

func TestApplyKrausPreservesNormalization(t *testing.T) {
	t.Parallel()
	s := plusState(t)
	ks := phaseFlipKraus(0.3)
	if err := s.ApplyKraus([]int{0}, ks); err != nil {
		t.Fatalf("%+v", err)
	}
	p, err := s.Probabilities([]int{0})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !approxEqual(p[0]+p[1], 1) {
		t.Fatalf("Σp = %g, want 1", p[0]+p[1])
	}
}

func TestApplyKrausPhaseFlipChannelIsUnitalOnAverage(t *testing.T) {
	t.Parallel()
	const p = 0.1
	const trials = 3000
	rng := rand.New(rand.NewSource(7))

	var sumX float64
	for i := 0; i < trials; i++ {
		s := plusState(t)
		s.rng = rng
		if err := s.ApplyKraus([]int{0}, phaseFlipKraus(p)); err != nil {
			t.Fatalf("%+v", err)
		}
		x, err := s.ExpvalPauli([]int{0}, "X")
		if err != nil {
			t.Fatalf("%+v", err)
		}
		sumX += real(x)
	}

	got := sumX / float64(trials)
	want := 1 - 2*p
	if got < want-0.08 || got > want+0.08 {
		t.Fatalf("average <X> over %d trials = %g, want close to %g", trials, got, want)
	}
}

func TestApplyKraus2QubitPreservesNormalization(t *testing.T) {
	t.Parallel()
	s := bellState(t)
	ks := []*cmatrix.Dense{cmatrix.Identity(4)}
	if err := s.ApplyKraus([]int{0, 1}, ks); err != nil {
		t.Fatalf("%+v", err)
	}
	p, err := s.Probabilities([]int{0, 1})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var total float64
	for _, v := range p {
		total += v
	}
	if !approxEqual(total, 1) {
		t.Fatalf("Σp = %g, want 1", total)
	}
}
