// Package mps implements the core Matrix Product State engine: tensor-site
// representation, canonicalization via Schmidt decomposition, application
// of one- and two-qubit unitaries with local bond growth and truncation,
// swap-based non-local gate application, measurement sampling, partial
// trace reductions, and expectation-value computation.
//
// References:
//   - The density-matrix renormalization group in the age of matrix product
//     states, Ulrich Schollwock.
//   - Efficient classical simulation of slightly entangled quantum
//     computations, Guifre Vidal.
package mps

import (
	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

// Source is the random-number source the core draws from for measurement,
// sampling, and Kraus-operator selection. *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// State is an N-qubit pure state represented as a canonical-form MPS chain.
// A State is owned by a single caller; concurrent mutation is not supported
// (§5).
type State struct {
	sites []*SiteTensor // length n
	bonds []*Bond       // length n-1, bond k sits between sites k and k+1
	cfg   Config
	rng   Source
}

// NumQubits returns N.
func (s *State) NumQubits() int { return len(s.sites) }

// NewState builds the N-qubit all-|0⟩ state (§3's lifecycle).
func NewState(n int, cfg Config, rng Source) (*State, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidQubit, "NewState: n=%d", n)
	}
	s := &State{
		sites: make([]*SiteTensor, n),
		bonds: make([]*Bond, n-1),
		cfg:   cfg,
		rng:   rng,
	}
	for i := range s.sites {
		s.sites[i] = trivialSite()
	}
	for i := range s.bonds {
		s.bonds[i] = trivialBond()
	}
	return s, nil
}

// boundaryBond returns the implicit bond to the left of site 0 or to the
// right of site n-1.
func (s *State) boundaryBond() *Bond { return trivialBond() }

// leftBond returns λ[k-1], or the implicit boundary bond when k==0.
func (s *State) leftBond(k int) *Bond {
	if k == 0 {
		return s.boundaryBond()
	}
	return s.bonds[k-1]
}

// rightBond returns λ[k], or the implicit boundary bond when k==n-1.
func (s *State) rightBond(k int) *Bond {
	if k == len(s.sites)-1 {
		return s.boundaryBond()
	}
	return s.bonds[k]
}

// Clone performs the deep copy required before any clone-and-measure
// sampling so that the underlying state is observably unchanged at return
// (§5's ordering guarantee).
func (s *State) Clone() *State {
	out := &State{
		sites: make([]*SiteTensor, len(s.sites)),
		bonds: make([]*Bond, len(s.bonds)),
		cfg:   s.cfg,
		rng:   s.rng,
	}
	for i, site := range s.sites {
		out.sites[i] = site.Clone()
	}
	for i, b := range s.bonds {
		out.bonds[i] = b.Clone()
	}
	return out
}

// InitializeFrom resolves the open question left by the original
// implementation's unimplemented initialize_qreg(num_qubits, state) path
// (spec §9): a full deep copy when qubit counts match, a clear diagnostic
// otherwise. A source with fewer qubits than s is the "initialize called on
// a proper subset of qubits" case of §4.1 and is rejected with
// ErrPartialInitialization rather than the generic ErrInvalidQubit.
func (s *State) InitializeFrom(other *State) error {
	if other.NumQubits() < s.NumQubits() {
		return errors.Wrapf(ErrPartialInitialization, "InitializeFrom: source has %d qubits, state has %d", other.NumQubits(), s.NumQubits())
	}
	if other.NumQubits() != s.NumQubits() {
		return errors.Wrapf(ErrInvalidQubit, "InitializeFrom: state has %d qubits, source has %d", s.NumQubits(), other.NumQubits())
	}
	clone := other.Clone()
	s.sites = clone.sites
	s.bonds = clone.bonds
	return nil
}

func (s *State) checkQubit(k int) error {
	if k < 0 || k >= s.NumQubits() {
		return errors.Wrapf(ErrInvalidQubit, "qubit %d out of range for %d qubits", k, s.NumQubits())
	}
	return nil
}

func (s *State) checkQubits(qubits []int) error {
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if err := s.checkQubit(q); err != nil {
			return err
		}
		if seen[q] {
			return errors.Wrapf(ErrInvalidQubit, "duplicate qubit %d", q)
		}
		seen[q] = true
	}
	return nil
}

// Apply1Q applies the 2x2 unitary u to qubit k (§4.3.2). Bond dimensions and
// canonical form are preserved exactly; no SVD is required.
func (s *State) Apply1Q(k int, u *cmatrix.Dense) error {
	if err := s.checkQubit(k); err != nil {
		return errors.Wrap(err, "Apply1Q")
	}
	if !u.IsUnitary(unitaryTol) {
		return errors.Wrapf(ErrNotUnitary, "Apply1Q: matrix is not unitary within tolerance %g", unitaryTol)
	}
	return s.sites[k].Apply1Q(u)
}

const unitaryTol = 1e-8

// Apply2QAdjacent applies the 4x4 unitary u to the adjacent qubits k, k+1
// (§4.3.3), the central algorithm of the core: form the joint tensor,
// apply u, SVD, truncate, and re-split into canonical-form site tensors.
func (s *State) Apply2QAdjacent(k int, u *cmatrix.Dense) error {
	if err := s.checkQubit(k); err != nil {
		return errors.Wrap(err, "Apply2QAdjacent")
	}
	if err := s.checkQubit(k + 1); err != nil {
		return errors.Wrap(err, "Apply2QAdjacent")
	}
	if u.Rows() != 4 || u.Cols() != 4 {
		return errors.Wrapf(ErrUnsupportedOperatorSize, "Apply2QAdjacent: expected a 4x4 matrix, got %dx%d", u.Rows(), u.Cols())
	}
	if !u.IsUnitary(unitaryTol) {
		return errors.Wrapf(ErrNotUnitary, "Apply2QAdjacent: matrix is not unitary within tolerance %g", unitaryTol)
	}
	return s.apply2QAdjacentOp(k, u, true)
}

// applyDiagonalAdjacent applies the (possibly non-unitary) diagonal
// operator diag(d) to adjacent qubits k, k+1 through the same
// contract/SVD/re-split machinery as Apply2QAdjacent, but without the
// maximum-bond cap and the rescaling of §4.2: only singular values below the
// truncation threshold are dropped, so the new bond keeps the raw retained
// magnitudes. A non-product diagonal (cz, for one) can raise the bond
// dimension.
func (s *State) applyDiagonalAdjacent(k int, d [4]complex128) error {
	diag := cmatrix.FromRows([][]complex128{
		{d[0], 0, 0, 0},
		{0, d[1], 0, 0},
		{0, 0, d[2], 0},
		{0, 0, 0, d[3]},
	})
	return s.apply2QAdjacentOp(k, diag, false)
}

// apply2QAdjacentOp is the shared contract/apply/SVD/re-split machinery
// behind Apply2QAdjacent and applyDiagonalAdjacent (§4.3.3's central
// algorithm). When truncate is false, only singular values below the
// truncation threshold are dropped (at least one is always kept); the
// maximum-bond cap and the rescaling of the §4.2 policy are skipped.
func (s *State) apply2QAdjacentOp(k int, u *cmatrix.Dense, truncate bool) error {
	left, mid, right := s.leftBond(k), s.rightBond(k), s.rightBond(k+1)
	siteK, siteK1 := s.sites[k], s.sites[k+1]
	lk, rk1 := siteK.LeftDim(), siteK1.RightDim()

	// P[s][s'] = diag(left) * Γ[k][s] * diag(mid) * Γ[k+1][s'] * diag(right),
	// each an (lk x rk1) matrix.
	var p [2][2]*cmatrix.Dense
	for sBit := 0; sBit < 2; sBit++ {
		left1 := cmatrix.MulDiagLeft(siteK.Slice(sBit), left.Values())
		mid1 := cmatrix.MulDiagRight(left1, mid.Values())
		for s1Bit := 0; s1Bit < 2; s1Bit++ {
			joined := cmatrix.Mul(mid1, siteK1.Slice(s1Bit))
			p[sBit][s1Bit] = cmatrix.MulDiagRight(joined, right.Values())
		}
	}

	// Q[t][t'] = Σ_{s,s'} u[(t,t')][(s,s')] * P[s][s'].
	var q [2][2]*cmatrix.Dense
	for t := 0; t < 2; t++ {
		for t1 := 0; t1 < 2; t1++ {
			row := t*2 + t1
			acc := cmatrix.Zeros(lk, rk1)
			for sBit := 0; sBit < 2; sBit++ {
				for s1Bit := 0; s1Bit < 2; s1Bit++ {
					col := sBit*2 + s1Bit
					coeff := u.At(row, col)
					if coeff == 0 {
						continue
					}
					acc = cmatrix.Add(acc, p[sBit][s1Bit].Scale(coeff))
				}
			}
			q[t][t1] = acc
		}
	}

	// Reshape into M of shape (2*lk, 2*rk1): block row t, block col t'.
	m := cmatrix.Zeros(2*lk, 2*rk1)
	for t := 0; t < 2; t++ {
		for t1 := 0; t1 < 2; t1++ {
			m.SetBlock(t*lk, t1*rk1, q[t][t1])
		}
	}

	uPrime, sigma, vDagger := cmatrix.SVD(m)
	sv := make([]float64, sigma.Rows())
	for i := range sv {
		sv[i] = real(sigma.At(i, i))
	}

	var newBond *Bond
	var keep int
	if truncate {
		newBond, keep = Truncate(sv, s.cfg)
	} else {
		keep = len(sv)
		for keep > 0 && sv[keep-1] < s.cfg.truncationThreshold {
			keep--
		}
		if keep == 0 {
			keep = 1
		}
		newBond = NewBond(sv[:keep])
	}

	leftInv := left.Inverse(s.cfg.numericalGuard)
	rightInv := right.Inverse(s.cfg.numericalGuard)

	newSiteK := &SiteTensor{}
	newSiteK1 := &SiteTensor{}
	for t := 0; t < 2; t++ {
		block := uPrime.Sub(t*lk, (t+1)*lk, 0, keep)
		block = cmatrix.MulDiagLeft(block, leftInv)
		newSiteK.slice[t] = block
	}
	for t1 := 0; t1 < 2; t1++ {
		block := vDagger.Sub(0, keep, t1*rk1, (t1+1)*rk1)
		block = cmatrix.MulDiagRight(block, rightInv)
		newSiteK1.slice[t1] = block
	}

	s.sites[k] = newSiteK
	s.sites[k+1] = newSiteK1
	s.bonds[k] = newBond
	return nil
}

// swapAdjacent exchanges the physical state of qubits k and k+1, preserving
// canonical form (§4.3.4). It is itself an Apply2QAdjacent call with the
// SWAP unitary; the core does not special-case away the SVD, favoring
// uniform code over the "MAY specialize" optimization freedom spec.md
// allows.
func (s *State) swapAdjacent(k int) error {
	return s.Apply2QAdjacent(k, gateSwap())
}

// ApplyMatrix applies a dense 2^m x 2^m unitary to the given qubits (§4.3.6).
// m=1 dispatches to Apply1Q, m=2 dispatches to the two-qubit protocol,
// routing through adjacent swaps when the qubits are not neighbors (§4.3.4).
// m>2 is rejected: the core supports only up to two-qubit dense operators.
func (s *State) ApplyMatrix(qubits []int, m *cmatrix.Dense) error {
	if err := s.checkQubits(qubits); err != nil {
		return errors.Wrap(err, "ApplyMatrix")
	}
	switch len(qubits) {
	case 1:
		return s.Apply1Q(qubits[0], m)
	case 2:
		return s.applyTwoQubitMatrix(qubits[0], qubits[1], m)
	default:
		return errors.Wrapf(ErrUnsupportedOperatorSize, "ApplyMatrix: core supports only 1- or 2-qubit dense operators, got %d qubits", len(qubits))
	}
}

// applyTwoQubitMatrix applies m, ordered with qubits[0] as the more
// significant physical index, to possibly non-adjacent qubits i and j by
// routing i next to j via a chain of adjacent swaps and reversing the chain
// afterward (§4.3.4).
func (s *State) applyTwoQubitMatrix(i, j int, m *cmatrix.Dense) error {
	return s.routeAdjacent(i, j, func(cur int, m *cmatrix.Dense) error {
		return s.Apply2QAdjacent(cur, m)
	}, m)
}

// routeAdjacent moves qubit i next to qubit j via a chain of adjacent
// swaps, invokes apply at the resulting adjacent site pair, and reverses
// the swap chain to restore site order (§4.3.4). If i>j, m is reinterpreted
// with its two target qubits' roles exchanged before application.
func (s *State) routeAdjacent(i, j int, apply func(cur int, m *cmatrix.Dense) error, m *cmatrix.Dense) error {
	if i == j {
		return errors.Wrapf(ErrInvalidQubit, "routeAdjacent: qubits must differ, got %d twice", i)
	}
	if i > j {
		i, j = j, i
		m = swapGateOperands(m)
	}

	cur := i
	for cur < j-1 {
		if err := s.swapAdjacent(cur); err != nil {
			return errors.Wrap(err, "routeAdjacent: routing swap")
		}
		cur++
	}

	if err := apply(cur, m); err != nil {
		return errors.Wrap(err, "routeAdjacent")
	}

	for cur > i {
		cur--
		if err := s.swapAdjacent(cur); err != nil {
			return errors.Wrap(err, "routeAdjacent: restoring swap")
		}
	}
	return nil
}

// swapGateOperands returns the matrix equivalent to applying m with its two
// target qubits exchanged: conjugation by SWAP, m' = SWAP * m * SWAP.
func swapGateOperands(m *cmatrix.Dense) *cmatrix.Dense {
	sw := gateSwap()
	return cmatrix.Mul(sw, cmatrix.Mul(m, sw))
}

// ApplyGate dispatches a named gate from the recognized set of spec.md §6
// to Apply1Q/Apply2QAdjacent-or-routed, via gateTable. "ccx" has no entry in
// gateTable (§4.3.5: "no separate primitive is required") and is expanded
// here into the standard six-CNOT-plus-single-qubit Toffoli network.
func (s *State) ApplyGate(name string, qubits []int, params []float64) error {
	if name == "ccx" {
		return s.applyToffoli(qubits)
	}
	spec, ok := gateTable[name]
	if !ok {
		return errors.Wrapf(ErrUnknownGate, "ApplyGate: %q", name)
	}
	if len(qubits) != spec.numQubits {
		return errors.Wrapf(ErrInvalidQubit, "ApplyGate %q: expected %d qubits, got %d", name, spec.numQubits, len(qubits))
	}
	if len(params) != spec.numParams {
		return errors.Wrapf(ErrUnsupportedOperatorSize, "ApplyGate %q: expected %d params, got %d", name, spec.numParams, len(params))
	}
	u := spec.build(params)
	return s.ApplyMatrix(qubits, u)
}

// applyToffoli decomposes ccx(control0, control1, target) into the standard
// network of H, CX and T/T† gates (§4.3.5), routed through ApplyMatrix so
// non-adjacent controls/target are handled by the same swap routing as any
// other two-qubit gate.
func (s *State) applyToffoli(qubits []int) error {
	if len(qubits) != 3 {
		return errors.Wrapf(ErrInvalidQubit, "applyToffoli: expected 3 qubits, got %d", len(qubits))
	}
	c0, c1, t := qubits[0], qubits[1], qubits[2]
	type step struct {
		gate   *cmatrix.Dense
		qubits []int
	}
	steps := []step{
		{gateH(), []int{t}},
		{gateCX(), []int{c1, t}},
		{gateTdg(), []int{t}},
		{gateCX(), []int{c0, t}},
		{gateT(), []int{t}},
		{gateCX(), []int{c1, t}},
		{gateTdg(), []int{t}},
		{gateCX(), []int{c0, t}},
		{gateT(), []int{c1}},
		{gateT(), []int{t}},
		{gateH(), []int{t}},
		{gateCX(), []int{c0, c1}},
		{gateT(), []int{c0}},
		{gateTdg(), []int{c1}},
		{gateCX(), []int{c0, c1}},
	}
	for _, st := range steps {
		if err := s.ApplyMatrix(st.qubits, st.gate); err != nil {
			return errors.Wrap(err, "applyToffoli")
		}
	}
	return nil
}

// ApplyDiagonal applies a diagonal operator to one or two qubits (§4.3.6).
// On one qubit it scales the two physical slices of the site tensor
// element-wise, with no SVD and no change of bond dimension. On two qubits
// it is not element-wise: the pair is routed adjacent by swaps and re-split
// by SVD in applyDiagonalAdjacent, and the bond between them can change
// dimension. Neither path checks that d is unitary.
func (s *State) ApplyDiagonal(qubits []int, d []complex128) error {
	if err := s.checkQubits(qubits); err != nil {
		return errors.Wrap(err, "ApplyDiagonal")
	}
	dim := 1 << len(qubits)
	if len(d) != dim {
		return errors.Wrapf(ErrUnsupportedOperatorSize, "ApplyDiagonal: expected %d entries for %d qubits, got %d", dim, len(qubits), len(d))
	}
	switch len(qubits) {
	case 1:
		return s.sites[qubits[0]].Apply1Q(cmatrix.FromRows([][]complex128{{d[0], 0}, {0, d[1]}}))
	case 2:
		return s.routeAdjacent(qubits[0], qubits[1], func(cur int, diag *cmatrix.Dense) error {
			return s.applyDiagonalAdjacent(cur, [4]complex128{diag.At(0, 0), diag.At(1, 1), diag.At(2, 2), diag.At(3, 3)})
		}, cmatrix.FromRows([][]complex128{
			{d[0], 0, 0, 0},
			{0, d[1], 0, 0},
			{0, 0, d[2], 0},
			{0, 0, 0, d[3]},
		}))
	default:
		return errors.Wrapf(ErrUnsupportedOperatorSize, "ApplyDiagonal: core supports only 1- or 2-qubit diagonal operators, got %d qubits", len(qubits))
	}
}
