package mps

import (
	"math"

	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

// ApplyKraus samples a Kraus operator weighted by p_i = ‖K_i|ψ⟩‖² and
// applies it, renormalizing the result (§4.3.12). Individual K_i need not
// be unitary, so K_i bypasses Apply1Q/Apply2QAdjacent's unitarity check: a
// 1-qubit K_i is applied to the site tensor directly, rescaled, and the
// chain recanonicalized around it; a 2-qubit K_i goes through the
// non-truncating adjacent-pair path (the same one applyDiagonalAdjacent
// uses) and the new bond is rescaled.
func (s *State) ApplyKraus(qubits []int, ks []*cmatrix.Dense) error {
	if err := s.checkQubits(qubits); err != nil {
		return errors.Wrap(err, "ApplyKraus")
	}
	if len(qubits) != 1 && len(qubits) != 2 {
		return errors.Wrapf(ErrUnsupportedOperatorSize, "ApplyKraus: core supports only 1- or 2-qubit channels, got %d qubits", len(qubits))
	}
	dim := 1 << len(qubits)
	ps := make([]float64, len(ks))
	var total float64
	for i, k := range ks {
		if k.Rows() != dim || k.Cols() != dim {
			return errors.Wrapf(ErrUnsupportedOperatorSize, "ApplyKraus: operator %d is %dx%d, want %dx%d", i, k.Rows(), k.Cols(), dim, dim)
		}
		weight := cmatrix.Mul(k.Dagger(), k)
		p, err := s.ExpvalMatrix(qubits, weight)
		if err != nil {
			return errors.Wrapf(err, "ApplyKraus: operator %d", i)
		}
		ps[i] = real(p)
		total += ps[i]
	}
	if math.Abs(total-1) > s.cfg.numericalGuard {
		return errors.Wrapf(ErrNumericalInconsistency, "ApplyKraus: Σp_i = %g, want 1", total)
	}

	draw := s.rng.Float64() * total
	idx := len(ks) - 1
	var cum float64
	for i, p := range ps {
		cum += p
		if draw < cum {
			idx = i
			break
		}
	}
	if ps[idx] <= 0 {
		return errors.Wrapf(ErrNumericalInconsistency, "ApplyKraus: sampled operator %d has zero probability", idx)
	}

	switch len(qubits) {
	case 1:
		return s.applyKraus1Q(qubits[0], ks[idx], ps[idx])
	default:
		return s.applyKraus2Q(qubits[0], qubits[1], ks[idx], ps[idx])
	}
}

func (s *State) applyKraus1Q(k int, op *cmatrix.Dense, p float64) error {
	if err := s.sites[k].Apply1Q(op); err != nil {
		return errors.Wrap(err, "applyKraus1Q")
	}
	scale := complex(1/math.Sqrt(p), 0)
	site := s.sites[k]
	s.sites[k] = NewSiteTensor(site.Slice(0).Scale(scale), site.Slice(1).Scale(scale))
	if err := s.recanonicalizeAround(k); err != nil {
		return errors.Wrap(err, "applyKraus1Q")
	}
	return nil
}

func (s *State) applyKraus2Q(i, j int, op *cmatrix.Dense, p float64) error {
	scale := 1 / math.Sqrt(p)
	return s.routeAdjacent(i, j, func(cur int, m *cmatrix.Dense) error {
		if err := s.apply2QAdjacentOp(cur, m, false); err != nil {
			return err
		}
		rescaled := make([]float64, s.bonds[cur].Dim())
		for idx, v := range s.bonds[cur].Values() {
			rescaled[idx] = v * scale
		}
		s.bonds[cur] = NewBond(rescaled)
		return nil
	}, op)
}
