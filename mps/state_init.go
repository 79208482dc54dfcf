package mps

import (
	"math"

	"github.com/fumin/qmps/cmatrix"
	"github.com/pkg/errors"
)

// NewStateFromVector builds the canonical MPS for a normalized length-2^n
// state vector by n-1 successive SVDs (§4.3.1). External index b = Σ bit_k
// 2^k with bit_k the physical value of site k (§3); since the recursive
// decomposition below peels off the most significant remaining axis first,
// v is bit-reversed on ingest so that the site built at step k ends up
// carrying bit_k of the caller's vector, matching the original simulator's
// own "internal bit ordering is the opposite of ordering in Qasm, so must
// reverse order before starting" comment.
func NewStateFromVector(n int, v []complex128, cfg Config, rng Source) (*State, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidQubit, "NewStateFromVector: n=%d", n)
	}
	want := 1 << n
	if len(v) != want {
		return nil, errors.Wrapf(ErrInvalidQubit, "NewStateFromVector: expected length %d for %d qubits, got %d", want, n, len(v))
	}
	if norm2 := vectorNormSquared(v); math.Abs(norm2-1) > 1e-6 {
		return nil, errors.Wrapf(ErrNumericalInconsistency, "NewStateFromVector: input vector norm^2=%g, want 1", norm2)
	}

	internal := bitReverseVector(v, n)
	s := &State{
		sites: make([]*SiteTensor, n),
		bonds: make([]*Bond, n-1),
		cfg:   cfg,
		rng:   rng,
	}

	if n == 1 {
		s.sites[0] = NewSiteTensor(
			cmatrix.NewDense(1, 1, []complex128{internal[0]}),
			cmatrix.NewDense(1, 1, []complex128{internal[1]}),
		)
		return s, nil
	}

	leftDim := 1
	remainder := cmatrix.NewDense(2, 1<<(n-1), internal)
	prevInv := []float64{1}
	for k := 0; k < n-1; k++ {
		dim := remainder.Cols()
		u, sigma, vDagger := cmatrix.SVD(remainder)
		sv := make([]float64, sigma.Rows())
		for i := range sv {
			sv[i] = real(sigma.At(i, i))
		}
		bond, keep := Truncate(sv, cfg)

		site := &SiteTensor{}
		for bit := 0; bit < 2; bit++ {
			block := extractStridedRows(u, bit, 2, leftDim, keep)
			block = cmatrix.MulDiagLeft(block, prevInv)
			site.slice[bit] = block
		}
		s.sites[k] = site
		s.bonds[k] = bond

		if k == n-2 {
			last := &SiteTensor{}
			for bit := 0; bit < 2; bit++ {
				last.slice[bit] = vDagger.Sub(0, keep, bit, bit+1)
			}
			s.sites[k+1] = last
			break
		}

		vTrunc := vDagger.Sub(0, keep, 0, dim)
		nextRemainder := cmatrix.MulDiagLeft(vTrunc, bond.Values())
		remainder = nextRemainder.Reshape(keep*2, dim/2)
		leftDim = keep
		prevInv = bond.Inverse(cfg.numericalGuard)
	}

	return s, nil
}

// extractStridedRows extracts the rows {bit, bit+stride, bit+2*stride, ...}
// (count of them) and the first cols columns of m, i.e. the per-physical-bit
// block of a matrix whose rows interleave a left bond index with the
// physical bit (row = leftIndex*stride + bit).
func extractStridedRows(m *cmatrix.Dense, bit, stride, count, cols int) *cmatrix.Dense {
	out := cmatrix.Zeros(count, cols)
	for leftIndex := 0; leftIndex < count; leftIndex++ {
		row := leftIndex*stride + bit
		for j := 0; j < cols; j++ {
			out.Set(leftIndex, j, m.At(row, j))
		}
	}
	return out
}

func vectorNormSquared(v []complex128) float64 {
	var s float64
	for _, c := range v {
		s += real(c)*real(c) + imag(c)*imag(c)
	}
	return s
}

// bitReverseVector returns a permutation of v where the n-bit index of each
// entry has its bits reversed.
func bitReverseVector(v []complex128, n int) []complex128 {
	out := make([]complex128, len(v))
	for i := range v {
		out[reverseBits(i, n)] = v[i]
	}
	return out
}

func reverseBits(x, n int) int {
	r := 0
	for i := 0; i < n; i++ {
		r |= ((x >> i) & 1) << (n - 1 - i)
	}
	return r
}
