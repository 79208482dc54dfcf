package mps

import (
	"sort"

	"github.com/pkg/errors"
)

// heuristicBand is one row of the §4.4 tuning parameters for the
// PROB-vs-APPLY selector, keyed by an inclusive upper bound on the maximum
// bond dimension. Exact constants are tuning parameters per spec, not
// contractual; these match the original simulator's own table.
type heuristicBand struct {
	maxBond int
	c, r    float64
}

var heuristicBands = []heuristicBand{
	{2, 12, 1.85},
	{4, 3, 1.75},
	{8, 2.5, 1.65},
	{16, 0.5, 1.75},
}

// maxBondDimension returns the largest bond dimension currently present in
// the chain (0 for a single-qubit state with no bonds at all).
func (s *State) maxBondDimension() int {
	max := 0
	for _, b := range s.bonds {
		if d := b.Dim(); d > max {
			max = d
		}
	}
	return max
}

// chooseSampleMeasureAlgorithm applies §4.4's heuristic: N≥26 always APPLY,
// N<10 always PROB, otherwise banded on maximum bond dimension with a
// shots < c·r^(N-10) threshold. Deterministic given (N, D, shots).
func chooseSampleMeasureAlgorithm(n, maxBond, shots int) SampleMeasureAlgorithm {
	if n >= 26 {
		return AlgorithmApply
	}
	if n < 10 {
		return AlgorithmProb
	}
	for _, band := range heuristicBands {
		if maxBond > band.maxBond {
			continue
		}
		threshold := band.c
		for i := 0; i < n-10; i++ {
			threshold *= band.r
		}
		if float64(shots) < threshold {
			return AlgorithmApply
		}
		return AlgorithmProb
	}
	return AlgorithmProb
}

// SampleMeasure draws shots independent bitstrings over qubits without
// otherwise mutating the state (§4.4, §5's cloning-before-mutation
// ordering guarantee), choosing PROB or APPLY per Config's configured
// algorithm (or the heuristic selector when set to AlgorithmHeuristic).
func (s *State) SampleMeasure(qubits []int, shots int) ([][]int, error) {
	if err := s.checkQubits(qubits); err != nil {
		return nil, errors.Wrap(err, "SampleMeasure")
	}
	algo := s.cfg.sampleMeasureAlgorithm
	if algo == AlgorithmHeuristic {
		algo = chooseSampleMeasureAlgorithm(s.NumQubits(), s.maxBondDimension(), shots)
	}
	switch algo {
	case AlgorithmApply:
		return s.SampleMeasureApply(qubits, shots)
	default:
		return s.SampleMeasureProb(qubits, shots)
	}
}

// SampleMeasureProb computes the marginal probability distribution once and
// draws shots independent samples from it via inverse-CDF search (§4.4's
// marginal/PROB strategy).
func (s *State) SampleMeasureProb(qubits []int, shots int) ([][]int, error) {
	probs, err := s.Probabilities(qubits)
	if err != nil {
		return nil, errors.Wrap(err, "SampleMeasureProb")
	}
	sorted := append([]int(nil), qubits...)
	sort.Ints(sorted)
	rank := make(map[int]int, len(sorted))
	for i, q := range sorted {
		rank[q] = i
	}

	results := make([][]int, shots)
	for shot := 0; shot < shots; shot++ {
		draw := s.rng.Float64()
		idx := len(probs) - 1
		var cum float64
		for i, p := range probs {
			cum += p
			if draw < cum {
				idx = i
				break
			}
		}
		bits := bitsOf(idx, len(qubits))
		outcome := make([]int, len(qubits))
		for i, q := range qubits {
			outcome[i] = bits[rank[q]]
		}
		results[shot] = outcome
	}
	return results, nil
}

// SampleMeasureApply clones the state and destructively measures once per
// shot (§4.4's clone-and-measure/APPLY strategy). The receiver is cloned
// before any mutation, so it is observably unchanged at return (§5).
func (s *State) SampleMeasureApply(qubits []int, shots int) ([][]int, error) {
	results := make([][]int, shots)
	for shot := 0; shot < shots; shot++ {
		clone := s.Clone()
		outcome, err := clone.Measure(qubits)
		if err != nil {
			return nil, errors.Wrap(err, "SampleMeasureApply")
		}
		results[shot] = outcome
	}
	return results, nil
}

// bitsOf expands idx into its n-bit little-endian digit sequence, matching
// the bit i = 2^i convention DensityMatrix/Probabilities use for a qubit
// subset's output index.
func bitsOf(idx, n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = (idx >> i) & 1
	}
	return out
}
