package mps

import "math"

// fixedSource returns a fixed, repeating sequence of draws, letting tests
// pin down exactly which branch a probabilistic draw takes without
// depending on any particular RNG's distribution.
type fixedSource struct {
	draws []float64
	i     int
}

func (f *fixedSource) Float64() float64 {
	v := f.draws[f.i%len(f.draws)]
	f.i++
	return v
}

const tol = 1e-6

func approxEqual(a, b float64) bool { return math.Abs(a-b) < tol }

func approxEqualC(a, b complex128) bool {
	return approxEqual(real(a), real(b)) && approxEqual(imag(a), imag(b))
}
