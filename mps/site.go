package mps

import (
	"math"

	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

// SiteTensor is the rank-3 tensor Γ[k] of §3, stored as the pair of
// matrices Γ[k][0] and Γ[k][1] indexed by the physical bit value, each of
// shape (Lk, Rk).
type SiteTensor struct {
	slice [2]*cmatrix.Dense
}

// NewSiteTensor builds a site tensor from its two physical-bit slices. Both
// slices must share the same shape.
func NewSiteTensor(zero, one *cmatrix.Dense) *SiteTensor {
	if zero.Rows() != one.Rows() || zero.Cols() != one.Cols() {
		panic("mps: site tensor slices have mismatched shape")
	}
	return &SiteTensor{slice: [2]*cmatrix.Dense{zero, one}}
}

// trivialSite returns the |0> site tensor of §3's lifecycle: both slices are
// 1x1, the "0" slice is 1 and the "1" slice is 0.
func trivialSite() *SiteTensor {
	return NewSiteTensor(cmatrix.NewDense(1, 1, []complex128{1}), cmatrix.Zeros(1, 1))
}

// Slice returns Γ[k][bit].
func (s *SiteTensor) Slice(bit int) *cmatrix.Dense { return s.slice[bit] }

// LeftDim returns Lk.
func (s *SiteTensor) LeftDim() int { return s.slice[0].Rows() }

// RightDim returns Rk.
func (s *SiteTensor) RightDim() int { return s.slice[0].Cols() }

// Clone returns a deep copy.
func (s *SiteTensor) Clone() *SiteTensor {
	return &SiteTensor{slice: [2]*cmatrix.Dense{s.slice[0].Clone(), s.slice[1].Clone()}}
}

// MulLeft left-multiplies both slices by m. Precondition: m.Cols() ==
// s.LeftDim().
func (s *SiteTensor) MulLeft(m *cmatrix.Dense) error {
	if m.Cols() != s.LeftDim() {
		return errors.Errorf("mps: MulLeft: inner dimension mismatch, m has %d cols, site has left dim %d", m.Cols(), s.LeftDim())
	}
	s.slice[0] = cmatrix.Mul(m, s.slice[0])
	s.slice[1] = cmatrix.Mul(m, s.slice[1])
	return nil
}

// MulRight right-multiplies both slices by m. Precondition: m.Rows() ==
// s.RightDim().
func (s *SiteTensor) MulRight(m *cmatrix.Dense) error {
	if m.Rows() != s.RightDim() {
		return errors.Errorf("mps: MulRight: inner dimension mismatch, m has %d rows, site has right dim %d", m.Rows(), s.RightDim())
	}
	s.slice[0] = cmatrix.Mul(s.slice[0], m)
	s.slice[1] = cmatrix.Mul(s.slice[1], m)
	return nil
}

// MulDiagLeft scales the rows of both slices by the real diagonal v.
func (s *SiteTensor) MulDiagLeft(v []float64) error {
	if len(v) != s.LeftDim() {
		return errors.Errorf("mps: MulDiagLeft: length %d does not match left dim %d", len(v), s.LeftDim())
	}
	s.slice[0] = cmatrix.MulDiagLeft(s.slice[0], v)
	s.slice[1] = cmatrix.MulDiagLeft(s.slice[1], v)
	return nil
}

// MulDiagRight scales the columns of both slices by the real diagonal v.
func (s *SiteTensor) MulDiagRight(v []float64) error {
	if len(v) != s.RightDim() {
		return errors.Errorf("mps: MulDiagRight: length %d does not match right dim %d", len(v), s.RightDim())
	}
	s.slice[0] = cmatrix.MulDiagRight(s.slice[0], v)
	s.slice[1] = cmatrix.MulDiagRight(s.slice[1], v)
	return nil
}

// Norm returns the Frobenius norm of the site tensor across both physical
// slices.
func (s *SiteTensor) Norm() float64 {
	n0, n1 := s.slice[0].Frobenius(), s.slice[1].Frobenius()
	return math.Sqrt(n0*n0 + n1*n1)
}

// Apply1Q applies the 2x2 unitary u across the physical index, replacing
// both slices with their u-linear combinations: Γ'[b] = Σ_b' u[b][b'] Γ[b'].
func (s *SiteTensor) Apply1Q(u *cmatrix.Dense) error {
	if u.Rows() != 2 || u.Cols() != 2 {
		return errors.Errorf("mps: Apply1Q: expected a 2x2 matrix, got %dx%d", u.Rows(), u.Cols())
	}
	s0, s1 := s.slice[0], s.slice[1]
	new0 := cmatrix.Add(s0.Scale(u.At(0, 0)), s1.Scale(u.At(0, 1)))
	new1 := cmatrix.Add(s0.Scale(u.At(1, 0)), s1.Scale(u.At(1, 1)))
	s.slice[0], s.slice[1] = new0, new1
	return nil
}
