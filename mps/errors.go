package mps

import "github.com/pkg/errors"

// Sentinel errors identifying the error kinds of §7: preconditions, and
// numerical inconsistency the implementation refuses to paper over.
var (
	// ErrInvalidQubit is returned when a qubit index or count is out of range.
	ErrInvalidQubit = errors.New("mps: invalid qubit index")
	// ErrUnsupportedOperatorSize is returned when a dense operator targets
	// more qubits than the core supports directly.
	ErrUnsupportedOperatorSize = errors.New("mps: unsupported operator size")
	// ErrNotUnitary is returned when a gate matrix fails the unitarity check.
	ErrNotUnitary = errors.New("mps: matrix is not unitary")
	// ErrNumericalInconsistency is returned when a normalization or
	// probability-sum check fails beyond the configured guard.
	ErrNumericalInconsistency = errors.New("mps: numerical inconsistency")
	// ErrPartialInitialization is returned by operations that would
	// initialize a proper subset of qubits, which the core does not support.
	ErrPartialInitialization = errors.New("mps: partial initialization is not supported")
	// ErrUnknownGate is returned for an unrecognized gate name.
	ErrUnknownGate = errors.New("mps: unknown gate")
)
