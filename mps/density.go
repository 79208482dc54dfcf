package mps

import (
	"math"
	"sort"

	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

// pairKey indexes the doubled (ket-multi-index, bra-multi-index) transfer
// accumulator used by DensityMatrix.
type pairKey struct {
	ket, bra int
}

// DensityMatrix contracts the environment (every site not in qubits) to
// produce the 2^|qubits| x 2^|qubits| reduced density matrix ρ_S (§4.3.9).
// Because the chain stays in canonical form, environment sites strictly
// outside the span of S collapse through their own isometry condition
// without any extra bookkeeping; sites between members of a non-contiguous
// S are traced via the same doubled-transfer-matrix step, just summed
// instead of kept open. Output index b = Σ bit_i 2^i over qubits sorted
// ascending, i-th by rank in that order (§3's bit-order convention applied
// to the subset).
func (s *State) DensityMatrix(qubits []int) (*cmatrix.Dense, error) {
	if err := s.checkQubits(qubits); err != nil {
		return nil, errors.Wrap(err, "DensityMatrix")
	}
	target := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		target[q] = true
	}
	rank := make(map[int]int, len(qubits))
	sorted := append([]int(nil), qubits...)
	sort.Ints(sorted)
	for i, q := range sorted {
		rank[q] = i
	}

	cur := map[pairKey]*cmatrix.Dense{{0, 0}: cmatrix.NewDense(1, 1, []complex128{1})}
	for k := 0; k < s.NumQubits(); k++ {
		b := [2]*cmatrix.Dense{
			cmatrix.MulDiagRight(s.sites[k].Slice(0), s.rightBond(k).Values()),
			cmatrix.MulDiagRight(s.sites[k].Slice(1), s.rightBond(k).Values()),
		}
		next := make(map[pairKey]*cmatrix.Dense)
		if target[k] {
			bit := rank[k]
			for key, m := range cur {
				for bk := 0; bk < 2; bk++ {
					for bb := 0; bb < 2; bb++ {
						nk := pairKey{key.ket | (bk << bit), key.bra | (bb << bit)}
						contrib := transferStep(b[bk], m, b[bb])
						if existing, ok := next[nk]; ok {
							next[nk] = cmatrix.Add(existing, contrib)
						} else {
							next[nk] = contrib
						}
					}
				}
			}
		} else {
			for key, m := range cur {
				var acc *cmatrix.Dense
				for bit := 0; bit < 2; bit++ {
					contrib := transferStep(b[bit], m, b[bit])
					if acc == nil {
						acc = contrib
					} else {
						acc = cmatrix.Add(acc, contrib)
					}
				}
				next[key] = acc
			}
		}
		cur = next
	}

	dim := 1 << len(qubits)
	rho := cmatrix.Zeros(dim, dim)
	for key, m := range cur {
		rho.Set(key.ket, key.bra, m.At(0, 0))
	}
	return rho, nil
}

// transferStep returns B_ket^T * M * conj(B_bra), the doubled-bond update
// used to advance the partial density-matrix accumulator past one site.
func transferStep(bKet, m, bBra *cmatrix.Dense) *cmatrix.Dense {
	lk, rk := bKet.Rows(), bKet.Cols()
	out := cmatrix.Zeros(rk, bBra.Cols())
	for c := 0; c < rk; c++ {
		for c1 := 0; c1 < bBra.Cols(); c1++ {
			var acc complex128
			for a := 0; a < lk; a++ {
				for a1 := 0; a1 < lk; a1++ {
					mv := m.At(a, a1)
					if mv == 0 {
						continue
					}
					acc += bKet.At(a, c) * mv * cmplxConj(bBra.At(a1, c1))
				}
			}
			out.Set(c, c1, acc)
		}
	}
	return out
}

func cmplxConj(c complex128) complex128 { return complex(real(c), -imag(c)) }

// Probabilities returns the marginal probability distribution over the
// 2^|qubits| outcomes of the given qubits (§4.3.7), via the diagonal of the
// reduced density matrix. A sum within Config's numerical guard of 1 but
// not exactly 1 is renormalized in place; since the core does not log (see
// DESIGN.md), the renormalization itself is not separately surfaced, and
// callers who need to detect drift should compare the pre-renormalization
// sum of the reduced density matrix's diagonal themselves. A sum outside
// the guard is reported as ErrNumericalInconsistency rather than silently
// corrected.
func (s *State) Probabilities(qubits []int) ([]float64, error) {
	rho, err := s.DensityMatrix(qubits)
	if err != nil {
		return nil, errors.Wrap(err, "Probabilities")
	}
	dim := rho.Rows()
	p := make([]float64, dim)
	var total float64
	for i := range p {
		p[i] = real(rho.At(i, i))
		total += p[i]
	}
	if math.Abs(total-1) > s.cfg.numericalGuard {
		return nil, errors.Wrapf(ErrNumericalInconsistency, "Probabilities: outcomes sum to %g, want 1", total)
	}
	if total != 1 && total != 0 {
		for i := range p {
			p[i] /= total
		}
	}
	return p, nil
}

// ExpvalMatrix computes Tr(ρ_S · M) via DensityMatrix (§4.3.10).
func (s *State) ExpvalMatrix(qubits []int, m *cmatrix.Dense) (complex128, error) {
	rho, err := s.DensityMatrix(qubits)
	if err != nil {
		return 0, errors.Wrap(err, "ExpvalMatrix")
	}
	if m.Rows() != rho.Rows() || m.Cols() != rho.Cols() {
		return 0, errors.Wrapf(ErrUnsupportedOperatorSize, "ExpvalMatrix: operator is %dx%d, qubit subset has dimension %d", m.Rows(), m.Cols(), rho.Rows())
	}
	return cmatrix.Mul(rho, m).Trace(), nil
}

// ExpvalPauli computes the expectation value of a Pauli string across
// qubits, one character per qubit from {I,X,Y,Z} (§4.3.10): a single
// left-to-right sweep carrying an (Rk x Rk) transfer matrix, inserting the
// named Pauli at each target site and the identity elsewhere.
func (s *State) ExpvalPauli(qubits []int, pauli string) (complex128, error) {
	if err := s.checkQubits(qubits); err != nil {
		return 0, errors.Wrap(err, "ExpvalPauli")
	}
	if len(qubits) != len(pauli) {
		return 0, errors.Wrapf(ErrUnsupportedOperatorSize, "ExpvalPauli: %d qubits but pauli string has length %d", len(qubits), len(pauli))
	}
	ops := make(map[int]byte, len(qubits))
	for i, q := range qubits {
		ops[q] = pauli[i]
	}

	m := cmatrix.NewDense(1, 1, []complex128{1})
	for k := 0; k < s.NumQubits(); k++ {
		op := gateID()
		if ch, ok := ops[k]; ok {
			p, err := pauliMatrix(ch)
			if err != nil {
				return 0, errors.Wrapf(err, "ExpvalPauli: qubit %d", k)
			}
			op = p
		}
		b := [2]*cmatrix.Dense{
			cmatrix.MulDiagRight(s.sites[k].Slice(0), s.rightBond(k).Values()),
			cmatrix.MulDiagRight(s.sites[k].Slice(1), s.rightBond(k).Values()),
		}
		var acc *cmatrix.Dense
		for bk := 0; bk < 2; bk++ {
			for bb := 0; bb < 2; bb++ {
				// op indexed [bra][ket] to match the ρ_{ket,bra}·O_{bra,ket}
				// convention DensityMatrix/ExpvalMatrix use.
				coeff := op.At(bb, bk)
				if coeff == 0 {
					continue
				}
				contrib := transferStep(b[bk], m, b[bb]).Scale(coeff)
				if acc == nil {
					acc = contrib
				} else {
					acc = cmatrix.Add(acc, contrib)
				}
			}
		}
		m = acc
	}
	v := m.At(0, 0)
	if math.Abs(imag(v)) > s.cfg.numericalGuard {
		return 0, errors.Wrapf(ErrNumericalInconsistency, "ExpvalPauli: result %v is not real within tolerance", v)
	}
	return complex(real(v), 0), nil
}

func pauliMatrix(ch byte) (*cmatrix.Dense, error) {
	switch ch {
	case 'I':
		return gateID(), nil
	case 'X':
		return gateX(), nil
	case 'Y':
		return gateY(), nil
	case 'Z':
		return gateZ(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownGate, "pauliMatrix: %q", ch)
	}
}

// ExpvalPauliVariance returns the mean and variance of a Pauli string
// observable (SPEC_FULL.md §4.6). Every Pauli string squares to the
// identity, so Var(P) = 1 - ⟨P⟩² in closed form; no second contraction is
// needed.
func (s *State) ExpvalPauliVariance(qubits []int, pauli string) (mean, variance float64, err error) {
	v, err := s.ExpvalPauli(qubits, pauli)
	if err != nil {
		return 0, 0, errors.Wrap(err, "ExpvalPauliVariance")
	}
	mean = real(v)
	variance = 1 - mean*mean
	return mean, variance, nil
}

// ExpvalMatrixVariance returns the mean and variance of a general matrix
// observable (SPEC_FULL.md §4.6): Var(M) = ⟨M²⟩ - ⟨M⟩².
func (s *State) ExpvalMatrixVariance(qubits []int, m *cmatrix.Dense) (mean, variance float64, err error) {
	v, err := s.ExpvalMatrix(qubits, m)
	if err != nil {
		return 0, 0, errors.Wrap(err, "ExpvalMatrixVariance")
	}
	mean = real(v)
	m2 := cmatrix.Mul(m, m)
	v2, err := s.ExpvalMatrix(qubits, m2)
	if err != nil {
		return 0, 0, errors.Wrap(err, "ExpvalMatrixVariance")
	}
	variance = real(v2) - mean*mean
	return mean, variance, nil
}
