package mps

import (
	"math"
	"sort"

	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

// siteMarginal returns the single-site marginal p(0), p(1) for qubit k by
// contracting the canonical chain locally, O(bond²) (§4.3.8 step 1): since
// the chain is canonical, tracing every other site collapses exactly to the
// λ[k-1]²- and λ[k]²-weighted Frobenius norm of each physical slice.
func (s *State) siteMarginal(k int) (p0, p1 float64) {
	left := s.leftBond(k).Values()
	right := s.rightBond(k).Values()
	var probs [2]float64
	for bit := 0; bit < 2; bit++ {
		m := s.sites[k].Slice(bit)
		var acc float64
		for a := 0; a < m.Rows(); a++ {
			la := left[a] * left[a]
			if la == 0 {
				continue
			}
			for c := 0; c < m.Cols(); c++ {
				v := m.At(a, c)
				acc += la * (real(v)*real(v) + imag(v)*imag(v)) * right[c] * right[c]
			}
		}
		probs[bit] = acc
	}
	return probs[0], probs[1]
}

// recanonicalizeAround restores canonical form on the bonds adjacent to a
// site whose tensor was just replaced by a non-isometric, pointwise update
// (projection in Measure, a non-unitary 1-qubit Kraus operator): re-running
// the ordinary adjacent-pair SVD protocol with the identity "gate" against
// each existing neighbor re-derives a valid canonical decomposition of the
// exact same (now correctly normalized) state.
func (s *State) recanonicalizeAround(k int) error {
	if k > 0 {
		if err := s.Apply2QAdjacent(k-1, cmatrix.Identity(4)); err != nil {
			return errors.Wrap(err, "recanonicalizeAround")
		}
	}
	if k < s.NumQubits()-1 {
		if err := s.Apply2QAdjacent(k, cmatrix.Identity(4)); err != nil {
			return errors.Wrap(err, "recanonicalizeAround")
		}
	}
	return nil
}

// collapseSite draws and applies the measurement outcome for a single site
// (§4.3.8 step 1).
func (s *State) collapseSite(k int) (int, error) {
	p0, p1 := s.siteMarginal(k)
	total := p0 + p1
	if math.Abs(total-1) > s.cfg.numericalGuard {
		return 0, errors.Wrapf(ErrNumericalInconsistency, "collapseSite: marginal at qubit %d sums to %g, want 1", k, total)
	}

	draw := s.rng.Float64() * total
	b := 0
	if draw >= p0 {
		b = 1
	}
	p := p0
	if b == 1 {
		p = p1
	}
	if p <= 0 {
		return 0, errors.Wrapf(ErrNumericalInconsistency, "collapseSite: qubit %d outcome %d has zero probability", k, b)
	}

	scale := complex(1/math.Sqrt(p), 0)
	lk, rk := s.sites[k].LeftDim(), s.sites[k].RightDim()
	slices := [2]*cmatrix.Dense{cmatrix.Zeros(lk, rk), cmatrix.Zeros(lk, rk)}
	slices[b] = s.sites[k].Slice(b).Scale(scale)
	s.sites[k] = NewSiteTensor(slices[0], slices[1])

	if err := s.recanonicalizeAround(k); err != nil {
		return 0, errors.Wrapf(err, "collapseSite: qubit %d", k)
	}
	return b, nil
}

// Measure draws a bitstring from the true marginal distribution and
// collapses the state (§4.3.8): sites are processed in ascending order so
// each collapse sees an already-consistent canonical chain, and outcomes
// are returned in the caller's requested qubit order.
func (s *State) Measure(qubits []int) ([]int, error) {
	if err := s.checkQubits(qubits); err != nil {
		return nil, errors.Wrap(err, "Measure")
	}
	sorted := append([]int(nil), qubits...)
	sort.Ints(sorted)

	outcomes := make(map[int]int, len(qubits))
	for _, k := range sorted {
		b, err := s.collapseSite(k)
		if err != nil {
			return nil, errors.Wrap(err, "Measure")
		}
		outcomes[k] = b
	}

	result := make([]int, len(qubits))
	for i, k := range qubits {
		result[i] = outcomes[k]
	}
	return result, nil
}

// Reset measures qubits then applies X to any outcome of 1, discarding the
// outcome itself (§4.3.8).
func (s *State) Reset(qubits []int) error {
	outcomes, err := s.Measure(qubits)
	if err != nil {
		return errors.Wrap(err, "Reset")
	}
	for i, k := range qubits {
		if outcomes[i] == 1 {
			if err := s.Apply1Q(k, gateX()); err != nil {
				return errors.Wrap(err, "Reset")
			}
		}
	}
	return nil
}
