package cmatrix

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SVD computes the singular value decomposition a = u * diag(s) * vDagger,
// with s sorted in descending order.
//
// Singular values of a come from the eigenvalues of the Hermitian matrix
// a^H*a. A Hermitian matrix H = Hr + i*Hi (Hr symmetric, Hi antisymmetric)
// realifies into the real symmetric matrix
//
//	S = [ Hr  -Hi ]
//	    [ Hi   Hr ]
//
// whose spectrum is the spectrum of H, each eigenvalue doubled; reading off
// the top and bottom halves of any unit eigenvector of S as the real and
// imaginary parts of a complex vector recovers an eigenvector of H for that
// eigenvalue. gonum's mat.EigenSym does the real symmetric diagonalization;
// this is the same realify-then-diagonalize technique
// exactdiag/mat.COO.Eigen uses for real matrices, extended to Hermitian
// ones.
func SVD(a *Dense) (u, s, vDagger *Dense) {
	m, n := a.rows, a.cols
	h := Mul(a.Dagger(), a) // n x n Hermitian PSD

	vals, vecs := hermitianEigen(h)
	// vals is ascending; we want descending.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return vals[order[i]] > vals[order[j]] })

	sv := make([]float64, n)
	v := Zeros(n, n)
	for col, idx := range order {
		lambda := vals[idx]
		if lambda < 0 {
			lambda = 0
		}
		sv[col] = math.Sqrt(lambda)
		for row := 0; row < n; row++ {
			v.Set(row, col, vecs[idx][row])
		}
	}

	uMat := Zeros(m, n)
	for col := 0; col < n; col++ {
		if sv[col] <= 0 {
			continue
		}
		vCol := Zeros(n, 1)
		for row := 0; row < n; row++ {
			vCol.Set(row, 0, v.At(row, col))
		}
		aV := Mul(a, vCol)
		for row := 0; row < m; row++ {
			uMat.Set(row, col, aV.At(row, 0)/complex(sv[col], 0))
		}
	}
	completeOrthonormalBasis(uMat, sv)

	return uMat, diagReal(sv), v.Dagger()
}

// hermitianEigen returns the eigenvalues (ascending) and eigenvectors of the
// Hermitian matrix h via the real-symmetric realification described above.
func hermitianEigen(h *Dense) ([]float64, [][]complex128) {
	n := h.Rows()
	sym := mat.NewSymDense(2*n, nil)
	// Diagonal blocks (Hr on both) are each internally symmetric, so the
	// upper triangle suffices.
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			hr := real(h.At(i, j))
			sym.SetSym(i, j, hr)
			sym.SetSym(n+i, n+j, hr)
		}
	}
	// The off-diagonal blocks (-Hi top-right, Hi bottom-left) sit between
	// disjoint index ranges, so every (i,j) pair is a distinct entry of the
	// symmetric matrix; none of it can be skipped as redundant.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			hi := imag(h.At(i, j))
			sym.SetSym(i, n+j, -hi)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		panic("cmatrix: eigendecomposition of Hermitian matrix failed to converge")
	}
	allVals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Each eigenvalue of h appears twice. Within a (possibly degenerate)
	// eigenspace, S's eigenvectors can map to complex multiples of one
	// another, so candidates are taken in ascending order and kept only if
	// they are linearly independent (over C) of those already kept.
	type pair struct {
		val float64
		col int
	}
	pairs := make([]pair, 2*n)
	for i, v := range allVals {
		pairs[i] = pair{val: v, col: i}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].val < pairs[j].val })

	vals := make([]float64, n)
	vecOut := make([][]complex128, n)
	k := 0
	for _, p := range pairs {
		vec := make([]complex128, n)
		for row := 0; row < n; row++ {
			re := vecs.At(row, p.col)
			im := vecs.At(n+row, p.col)
			vec[row] = complex(re, im)
		}
		vec = gramSchmidt(vecOut[:k], vec)
		if k == n || norm(vec) < 1e-6 {
			continue
		}
		vals[k] = p.val
		vecOut[k] = normalize(vec)
		k++
	}
	return vals, vecOut
}

// completeOrthonormalBasis fills zero-singular-value columns of u with an
// orthonormal extension of the nonzero columns, up to m columns in all, via
// Gram-Schmidt of the standard basis vector with the largest component
// outside the span so far. When a is square this keeps u unitary even when
// a is rank-deficient; truncation downstream discards these columns anyway.
func completeOrthonormalBasis(u *Dense, sv []float64) {
	m := u.Rows()
	cols := make([][]complex128, 0, u.Cols())
	for j := 0; j < u.Cols(); j++ {
		if sv[j] > 0 {
			col := make([]complex128, m)
			for i := 0; i < m; i++ {
				col[i] = u.At(i, j)
			}
			cols = append(cols, col)
		}
	}
	for j := 0; j < u.Cols() && len(cols) < m; j++ {
		if sv[j] > 0 {
			continue
		}
		var cand []complex128
		for e := 0; e < m; e++ {
			c := make([]complex128, m)
			c[e] = 1
			if c = gramSchmidt(cols, c); cand == nil || norm(c) > norm(cand) {
				cand = c
			}
		}
		cand = normalize(cand)
		cols = append(cols, cand)
		for i := 0; i < m; i++ {
			u.Set(i, j, cand[i])
		}
	}
}

func gramSchmidt(basis [][]complex128, v []complex128) []complex128 {
	out := append([]complex128(nil), v...)
	for _, b := range basis {
		var dot complex128
		for i := range b {
			dot += cconj(b[i]) * out[i]
		}
		for i := range out {
			out[i] -= dot * b[i]
		}
	}
	return out
}

func cconj(c complex128) complex128 { return complex(real(c), -imag(c)) }

func norm(v []complex128) float64 {
	var s float64
	for _, c := range v {
		s += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(s)
}

func normalize(v []complex128) []complex128 {
	n := norm(v)
	out := make([]complex128, len(v))
	for i, c := range v {
		out[i] = c / complex(n, 0)
	}
	return out
}

func diagReal(d []float64) *Dense {
	out := Zeros(len(d), len(d))
	for i, v := range d {
		out.Set(i, i, complex(v, 0))
	}
	return out
}

// SingularValues returns only the descending singular values of a.
func SingularValues(a *Dense) []float64 {
	_, s, _ := SVD(a)
	out := make([]float64, s.Rows())
	for i := range out {
		out[i] = real(s.At(i, i))
	}
	return out
}
