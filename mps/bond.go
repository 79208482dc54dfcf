package mps

import "math"

// Bond holds the Schmidt-coefficient vector λ[k] between two adjacent sites:
// a sorted-descending, non-negative real vector whose sum of squares must
// equal 1 within tolerance (§3's normalization invariant).
type Bond struct {
	values []float64
}

// NewBond wraps values as a Bond without re-sorting or rescaling; callers
// that need the truncation policy applied should go through Truncate.
func NewBond(values []float64) *Bond {
	return &Bond{values: append([]float64(nil), values...)}
}

// trivialBond returns the boundary/initial bond λ=[1].
func trivialBond() *Bond { return NewBond([]float64{1}) }

// Dim returns the bond dimension Rk.
func (b *Bond) Dim() int { return len(b.values) }

// Values returns the Schmidt coefficients, sorted descending.
func (b *Bond) Values() []float64 { return append([]float64(nil), b.values...) }

// SumSquares returns Σ λ_i².
func (b *Bond) SumSquares() float64 {
	var s float64
	for _, v := range b.values {
		s += v * v
	}
	return s
}

// Clone returns a deep copy.
func (b *Bond) Clone() *Bond { return NewBond(b.values) }

// Inverse returns 1/λ_i, with entries whose λ_i is below guard clamped to
// zero rather than blown up by noise, per §4.3.3's treatment of near-zero
// Schmidt weights.
func (b *Bond) Inverse(guard float64) []float64 {
	out := make([]float64, len(b.values))
	for i, v := range b.values {
		if v < guard {
			out[i] = 0
			continue
		}
		out[i] = 1 / v
	}
	return out
}

// Truncate applies the §4.2 truncation policy to a descending, non-negative
// singular-value sequence sv:
//  1. discard σ_i < cfg.truncationThreshold;
//  2. further discard the smallest σ_i until the retained count is at most
//     cfg.maxBondDimension (0 means unbounded);
//  3. rescale the retained vector so Σ σ_i² = 1.
//
// It returns the resulting Bond and the number of columns/rows of the
// accompanying U'/V'† factors that should be kept.
func Truncate(sv []float64, cfg Config) (*Bond, int) {
	keep := 0
	for _, v := range sv {
		if v < cfg.truncationThreshold {
			break
		}
		keep++
	}
	if cfg.maxBondDimension > 0 && keep > cfg.maxBondDimension {
		keep = cfg.maxBondDimension
	}
	if keep == 0 && len(sv) > 0 {
		// Never truncate to a zero-dimensional bond; keep the single
		// largest component so the chain stays well-defined.
		keep = 1
	}

	retained := append([]float64(nil), sv[:keep]...)
	var sumSq float64
	for _, v := range retained {
		sumSq += v * v
	}
	if sumSq > 0 {
		scale := 1 / math.Sqrt(sumSq)
		for i := range retained {
			retained[i] *= scale
		}
	}
	return NewBond(retained), keep
}
