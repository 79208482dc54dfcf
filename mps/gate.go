package mps

import (
	"math"
	"math/cmplx"

	"github.com/fumin/qmps/cmatrix"
)

// The recognized gate set of spec.md §6. One- and two-qubit gates are built
// as dense matrices and dispatched to Apply1Q/Apply2QAdjacent; ccx has no single
// dense primitive in this core (§4.3.5) and is expanded into a network of
// one- and two-qubit gates by the dispatcher in state.go.

func gateID() *cmatrix.Dense { return cmatrix.Identity(2) }

func gateX() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{0, 1}, {1, 0}})
}

func gateY() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{0, -1i}, {1i, 0}})
}

func gateZ() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{1, 0}, {0, -1}})
}

func gateS() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{1, 0}, {0, 1i}})
}

func gateSdg() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{1, 0}, {0, -1i}})
}

func gateH() *cmatrix.Dense {
	c := complex(1/math.Sqrt2, 0)
	return cmatrix.FromRows([][]complex128{{c, c}, {c, -c}})
}

func gateT() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{1, 0}, {0, cmplx.Exp(1i * math.Pi / 4)}})
}

func gateTdg() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{1, 0}, {0, cmplx.Exp(-1i * math.Pi / 4)}})
}

// gateSX is the √X gate: the principal square root of PauliX.
func gateSX() *cmatrix.Dense {
	half := complex(0.5, 0.5)
	return cmatrix.FromRows([][]complex128{
		{half, complex(0.5, -0.5)},
		{complex(0.5, -0.5), half},
	})
}

// gatePhase is p/u1(λ) = diag(1, e^{iλ}).
func gatePhase(lambda float64) *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}})
}

// gateU2 follows the standard Qiskit convention u2(φ,λ) = u3(π/2,φ,λ).
func gateU2(phi, lambda float64) *cmatrix.Dense {
	return gateU3(math.Pi/2, phi, lambda)
}

// gateU3 is the general single-qubit rotation u3(θ,φ,λ) per the Qiskit
// convention referenced by spec.md §6:
//
//	u3(θ,φ,λ) = [ cos(θ/2)            -e^{iλ}sin(θ/2)    ]
//	            [ e^{iφ}sin(θ/2)       e^{i(φ+λ)}cos(θ/2) ]
func gateU3(theta, phi, lambda float64) *cmatrix.Dense {
	ct, st := math.Cos(theta/2), math.Sin(theta/2)
	return cmatrix.FromRows([][]complex128{
		{complex(ct, 0), -cmplx.Exp(complex(0, lambda)) * complex(st, 0)},
		{cmplx.Exp(complex(0, phi)) * complex(st, 0), cmplx.Exp(complex(0, phi+lambda)) * complex(ct, 0)},
	})
}

func gateSwap() *cmatrix.Dense {
	return cmatrix.FromRows([][]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
}

// controlled1Q builds the 4x4 controlled version of a 2x2 single-qubit
// unitary, control on the first physical index.
func controlled1Q(u *cmatrix.Dense) *cmatrix.Dense {
	out := cmatrix.Identity(4)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out.Set(2+i, 2+j, u.At(i, j))
		}
	}
	return out
}

func gateCX() *cmatrix.Dense { return controlled1Q(gateX()) }
func gateCZ() *cmatrix.Dense { return controlled1Q(gateZ()) }
func gateCPhase(lambda float64) *cmatrix.Dense { return controlled1Q(gatePhase(lambda)) }

// gateSpec names how many qubits and parameters a recognized gate name
// needs, and how to build its matrix.
type gateSpec struct {
	numQubits int
	numParams int
	build     func(params []float64) *cmatrix.Dense
}

var gateTable = map[string]gateSpec{
	"id":  {1, 0, func(p []float64) *cmatrix.Dense { return gateID() }},
	"x":   {1, 0, func(p []float64) *cmatrix.Dense { return gateX() }},
	"y":   {1, 0, func(p []float64) *cmatrix.Dense { return gateY() }},
	"z":   {1, 0, func(p []float64) *cmatrix.Dense { return gateZ() }},
	"s":   {1, 0, func(p []float64) *cmatrix.Dense { return gateS() }},
	"sdg": {1, 0, func(p []float64) *cmatrix.Dense { return gateSdg() }},
	"h":   {1, 0, func(p []float64) *cmatrix.Dense { return gateH() }},
	"t":   {1, 0, func(p []float64) *cmatrix.Dense { return gateT() }},
	"tdg": {1, 0, func(p []float64) *cmatrix.Dense { return gateTdg() }},
	"sx":  {1, 0, func(p []float64) *cmatrix.Dense { return gateSX() }},
	"p":   {1, 1, func(p []float64) *cmatrix.Dense { return gatePhase(p[0]) }},
	"u1":  {1, 1, func(p []float64) *cmatrix.Dense { return gatePhase(p[0]) }},
	"u2":  {1, 2, func(p []float64) *cmatrix.Dense { return gateU2(p[0], p[1]) }},
	"u3":  {1, 3, func(p []float64) *cmatrix.Dense { return gateU3(p[0], p[1], p[2]) }},
	"u":   {1, 3, func(p []float64) *cmatrix.Dense { return gateU3(p[0], p[1], p[2]) }},
	"U":   {1, 3, func(p []float64) *cmatrix.Dense { return gateU3(p[0], p[1], p[2]) }},
	"cx":  {2, 0, func(p []float64) *cmatrix.Dense { return gateCX() }},
	"CX":  {2, 0, func(p []float64) *cmatrix.Dense { return gateCX() }},
	"cz":  {2, 0, func(p []float64) *cmatrix.Dense { return gateCZ() }},
	"cp":  {2, 1, func(p []float64) *cmatrix.Dense { return gateCPhase(p[0]) }},
	"cu1": {2, 1, func(p []float64) *cmatrix.Dense { return gateCPhase(p[0]) }},
	"swap": {2, 0, func(p []float64) *cmatrix.Dense { return gateSwap() }},
}
