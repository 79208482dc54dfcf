package mps

// SampleMeasureAlgorithm selects the strategy used by State.SampleMeasure.
type SampleMeasureAlgorithm int

const (
	// AlgorithmHeuristic picks PROB or APPLY from the qubit count, the
	// maximum bond dimension and the shot count, per the band table in
	// sampler.go.
	AlgorithmHeuristic SampleMeasureAlgorithm = iota
	// AlgorithmProb always uses the marginal-probability tree strategy.
	AlgorithmProb
	// AlgorithmApply always clones the state and destructively measures.
	AlgorithmApply
)

// Config is the immutable, per-state configuration governing truncation,
// snapshot chopping, and the sample-measure algorithm. It plays the role the
// original simulator gives to process-wide globals (truncation threshold,
// max bond dimension, chop threshold, parallel threshold, worker threads,
// sample-measure algorithm): here it is constructed once with NewConfig and
// passed into NewState, after which it is read-only for the lifetime of the
// state, per Design Note 1 of the specification this package implements.
type Config struct {
	truncationThreshold    float64
	maxBondDimension       int // 0 means unbounded
	chopThreshold          float64
	parallelThreshold      int
	workerThreads          int
	sampleMeasureAlgorithm SampleMeasureAlgorithm
	numericalGuard         float64
}

// NewConfig returns the default configuration: truncation threshold 1e-16,
// unbounded max bond dimension, chop threshold 1e-8, parallel threshold 14,
// a single worker thread, and the heuristic sample-measure algorithm.
func NewConfig() Config {
	return Config{
		truncationThreshold:    1e-16,
		maxBondDimension:       0,
		chopThreshold:          1e-8,
		parallelThreshold:      14,
		workerThreads:          1,
		sampleMeasureAlgorithm: AlgorithmHeuristic,
		numericalGuard:         1e-6,
	}
}

// TruncationThreshold sets the absolute singular-value floor (τ_abs).
func (c Config) TruncationThreshold(tau float64) Config {
	c.truncationThreshold = tau
	return c
}

// MaxBondDimension sets the retained-singular-value cap (D_max). 0 means
// unbounded.
func (c Config) MaxBondDimension(d int) Config {
	c.maxBondDimension = d
	return c
}

// ChopThreshold sets the value below which real/imag components are zeroed
// by FullStateVector. DensityMatrix and Probabilities do not chop.
func (c Config) ChopThreshold(t float64) Config {
	c.chopThreshold = t
	return c
}

// ParallelThreshold stores the qubit-count threshold for parallel
// primitives. Nothing in this package reads it: there is no worker pool, and
// every operation runs on the calling goroutine.
func (c Config) ParallelThreshold(n int) Config {
	c.parallelThreshold = n
	return c
}

// WorkerThreads stores the worker-pool size, clamped to at least 1. Nothing
// in this package reads it; see ParallelThreshold.
func (c Config) WorkerThreads(n int) Config {
	if n < 1 {
		n = 1
	}
	c.workerThreads = n
	return c
}

// SampleMeasureAlgorithm fixes which sampling strategy SampleMeasure uses.
func (c Config) SampleMeasureAlgorithm(a SampleMeasureAlgorithm) Config {
	c.sampleMeasureAlgorithm = a
	return c
}

// NumericalGuard sets the maximum normalization/probability drift that is
// silently corrected by renormalization rather than reported as a
// numerical-inconsistency error.
func (c Config) NumericalGuard(g float64) Config {
	c.numericalGuard = g
	return c
}
