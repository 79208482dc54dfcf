// Package cmatrix implements dense complex matrices and the small amount of
// linear algebra the MPS engine needs: products, Kronecker products, and
// singular value decomposition.
package cmatrix

import (
	"math"
	"math/cmplx"
)

// Dense is a dense row-major complex matrix.
type Dense struct {
	rows, cols int
	data       []complex128
}

// NewDense builds a Dense from row-major data. A nil data allocates a zeroed
// matrix.
func NewDense(rows, cols int, data []complex128) *Dense {
	if rows < 0 || cols < 0 {
		panic("cmatrix: negative dimension")
	}
	d := &Dense{rows: rows, cols: cols}
	if data == nil {
		d.data = make([]complex128, rows*cols)
		return d
	}
	if len(data) != rows*cols {
		panic("cmatrix: data length does not match shape")
	}
	d.data = append([]complex128(nil), data...)
	return d
}

// Zeros returns a rows x cols matrix of zeros.
func Zeros(rows, cols int) *Dense {
	return NewDense(rows, cols, nil)
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Dense {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// FromRows builds a Dense from a slice of rows.
func FromRows(rows [][]complex128) *Dense {
	if len(rows) == 0 {
		return Zeros(0, 0)
	}
	cols := len(rows[0])
	data := make([]complex128, 0, len(rows)*cols)
	for _, r := range rows {
		if len(r) != cols {
			panic("cmatrix: jagged rows")
		}
		data = append(data, r...)
	}
	return NewDense(len(rows), cols, data)
}

func (m *Dense) Rows() int { return m.rows }
func (m *Dense) Cols() int { return m.cols }

// Sub extracts the submatrix spanning rows [rowStart,rowEnd) and columns
// [colStart,colEnd).
func (m *Dense) Sub(rowStart, rowEnd, colStart, colEnd int) *Dense {
	out := Zeros(rowEnd-rowStart, colEnd-colStart)
	for i := rowStart; i < rowEnd; i++ {
		for j := colStart; j < colEnd; j++ {
			out.Set(i-rowStart, j-colStart, m.At(i, j))
		}
	}
	return out
}

// SetBlock copies src into m starting at (rowStart, colStart).
func (m *Dense) SetBlock(rowStart, colStart int, src *Dense) {
	for i := 0; i < src.Rows(); i++ {
		for j := 0; j < src.Cols(); j++ {
			m.Set(rowStart+i, colStart+j, src.At(i, j))
		}
	}
}

// Reshape returns a matrix with the given shape sharing m's row-major data,
// which must have the same total element count.
func (m *Dense) Reshape(rows, cols int) *Dense {
	if rows*cols != len(m.data) {
		panic("cmatrix: Reshape size mismatch")
	}
	return &Dense{rows: rows, cols: cols, data: m.data}
}

func (m *Dense) index(i, j int) int {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic("cmatrix: index out of range")
	}
	return i*m.cols + j
}

func (m *Dense) At(i, j int) complex128 { return m.data[m.index(i, j)] }
func (m *Dense) Set(i, j int, v complex128) { m.data[m.index(i, j)] = v }

// Raw returns the underlying row-major backing slice. Callers must not
// retain it past a mutation of m.
func (m *Dense) Raw() []complex128 { return m.data }

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	return NewDense(m.rows, m.cols, m.data)
}

// Equal reports whether a and b are equal within an absolute tolerance.
func (a *Dense) Equal(b *Dense, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i, v := range a.data {
		if cmplx.Abs(v-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// Add returns a+b.
func Add(a, b *Dense) *Dense {
	if a.rows != b.rows || a.cols != b.cols {
		panic("cmatrix: shape mismatch in Add")
	}
	out := Zeros(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Sub returns a-b.
func Sub(a, b *Dense) *Dense {
	if a.rows != b.rows || a.cols != b.cols {
		panic("cmatrix: shape mismatch in Sub")
	}
	out := Zeros(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out
}

// Scale returns c*a.
func (a *Dense) Scale(c complex128) *Dense {
	out := Zeros(a.rows, a.cols)
	for i, v := range a.data {
		out.data[i] = c * v
	}
	return out
}

// Dagger returns the conjugate transpose of a.
func (a *Dense) Dagger() *Dense {
	out := Zeros(a.cols, a.rows)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.Set(j, i, cmplx.Conj(a.At(i, j)))
		}
	}
	return out
}

// Mul returns a*b.
func Mul(a, b *Dense) *Dense {
	if a.cols != b.rows {
		panic("cmatrix: inner dimension mismatch in Mul")
	}
	out := Zeros(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*out.cols+j] += aik * b.At(k, j)
			}
		}
	}
	return out
}

// Kron returns the Kronecker product a⊗b.
func Kron(a, b *Dense) *Dense {
	out := Zeros(a.rows*b.rows, a.cols*b.cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			aij := a.At(i, j)
			if aij == 0 {
				continue
			}
			for p := 0; p < b.rows; p++ {
				for q := 0; q < b.cols; q++ {
					out.Set(i*b.rows+p, j*b.cols+q, aij*b.At(p, q))
				}
			}
		}
	}
	return out
}

// MulDiagLeft scales row i of a by d[i], in place semantics via a fresh copy.
func MulDiagLeft(a *Dense, d []float64) *Dense {
	if len(d) != a.rows {
		panic("cmatrix: diagonal length mismatch in MulDiagLeft")
	}
	out := a.Clone()
	for i := 0; i < out.rows; i++ {
		for j := 0; j < out.cols; j++ {
			out.data[i*out.cols+j] *= complex(d[i], 0)
		}
	}
	return out
}

// MulDiagRight scales column j of a by d[j].
func MulDiagRight(a *Dense, d []float64) *Dense {
	if len(d) != a.cols {
		panic("cmatrix: diagonal length mismatch in MulDiagRight")
	}
	out := a.Clone()
	for i := 0; i < out.rows; i++ {
		for j := 0; j < out.cols; j++ {
			out.data[i*out.cols+j] *= complex(d[j], 0)
		}
	}
	return out
}

// Frobenius returns the Frobenius norm of a.
func (a *Dense) Frobenius() float64 {
	var s float64
	for _, v := range a.data {
		s += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(s)
}

// Trace returns the trace of a square matrix.
func (a *Dense) Trace() complex128 {
	if a.rows != a.cols {
		panic("cmatrix: Trace of non-square matrix")
	}
	var s complex128
	for i := 0; i < a.rows; i++ {
		s += a.At(i, i)
	}
	return s
}

// IsUnitary reports whether a is unitary within tol.
func (a *Dense) IsUnitary(tol float64) bool {
	if a.rows != a.cols {
		return false
	}
	prod := Mul(a.Dagger(), a)
	return prod.Equal(Identity(a.rows), tol)
}

// IsHermitian reports whether a is Hermitian within tol.
func (a *Dense) IsHermitian(tol float64) bool {
	if a.rows != a.cols {
		return false
	}
	return a.Equal(a.Dagger(), tol)
}

// IsDiagonal reports whether all off-diagonal entries of a are within tol of
// zero.
func (a *Dense) IsDiagonal(tol float64) bool {
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			if i == j {
				continue
			}
			if cmplx.Abs(a.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}
