package mps

import "github.com/fumin/qmps/cmatrix"

// FullStateVector contracts the chain into a dense length-2^N vector,
// bit-reversing to match the externally fixed bit order (§4.3.11), and
// chopping components below Config's chop threshold. Intended for
// debugging/snapshots; callers are expected to gate this by N.
func (s *State) FullStateVector() []complex128 {
	n := s.NumQubits()
	cur := map[int]*cmatrix.Dense{0: cmatrix.NewDense(1, 1, []complex128{1})}
	for k := 0; k < n; k++ {
		b := [2]*cmatrix.Dense{
			cmatrix.MulDiagRight(s.sites[k].Slice(0), s.rightBond(k).Values()),
			cmatrix.MulDiagRight(s.sites[k].Slice(1), s.rightBond(k).Values()),
		}
		next := make(map[int]*cmatrix.Dense, len(cur)*2)
		for p, row := range cur {
			for bit := 0; bit < 2; bit++ {
				next[p*2+bit] = cmatrix.Mul(row, b[bit])
			}
		}
		cur = next
	}

	internal := make([]complex128, 1<<uint(n))
	for p, row := range cur {
		internal[p] = row.At(0, 0)
	}
	v := bitReverseVector(internal, n)
	chopVector(v, s.cfg.chopThreshold)
	return v
}

func chopVector(v []complex128, threshold float64) {
	for i, c := range v {
		re, im := real(c), imag(c)
		changed := false
		if re < threshold && re > -threshold {
			re = 0
			changed = true
		}
		if im < threshold && im > -threshold {
			im = 0
			changed = true
		}
		if changed {
			v[i] = complex(re, im)
		}
	}
}
