package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"ltispice/pkg/circuit"
	"ltispice/pkg/matrix"
)

var (
	// ErrSameNode is returned when a voltage-gain query names the same
	// node as both input and output.
	ErrSameNode = errors.New("analysis: input and output nodes are the same")

	// ErrShortedPort is returned when the node to short to ground
	// coincides with the input or output node.
	ErrShortedPort = errors.New("analysis: shorting the input or output node")

	// ErrGroundNode is returned when a query names the AC-ground
	// reference as a port. Ground is the zero-potential reference, not
	// an unknown, so exciting or observing it is meaningless.
	ErrGroundNode = errors.New("analysis: ground cannot be used as a port")
)

// portIndex resolves a port name and rejects the ground aliases.
func portIndex(ckt *circuit.Circuit, name string) (int, error) {
	id, err := ckt.NodeIndex(name)
	if err != nil {
		return 0, err
	}
	if id == circuit.Ground {
		return 0, fmt.Errorf("%w: %q", ErrGroundNode, name)
	}
	return id, nil
}

// StateSpace is a single-input single-output continuous-time system
// dx/dt = A x + B u, y = C x + D u.
type StateSpace struct {
	A *mat.Dense
	B *mat.VecDense
	C *mat.VecDense
	D float64
}

// voltageGainStateSpace builds the state-space system seen from an
// ideal voltage source at the input node to the voltage at the output
// node. The input node's KCL row is dropped (the source supplies
// whatever current is required) and its column becomes the excitation
// vector; the capacitive feed-through from the input is folded into
// the D term so no input derivative remains.
func voltageGainStateSpace(ckt *circuit.Circuit, inName, outName string) (*StateSpace, error) {
	nodeIn, err := portIndex(ckt, inName)
	if err != nil {
		return nil, err
	}
	nodeOut, err := portIndex(ckt, outName)
	if err != nil {
		return nil, err
	}
	if nodeIn == nodeOut {
		return nil, fmt.Errorf("%w: %q, %q", ErrSameNode, inName, outName)
	}

	n := ckt.NumNodes()
	size := n - 1

	gCore := matrix.Materialize(ckt.Conductance(), size, size, nodeIn, nodeIn)
	cCore := matrix.Materialize(ckt.Capacitance(), size, size, nodeIn, nodeIn)
	gIn := matrix.ExtractColumn(ckt.Conductance(), nodeIn, nodeIn, size)
	cIn := matrix.ExtractColumn(ckt.Capacitance(), nodeIn, nodeIn, size)

	fact, err := matrix.Factorize(cCore)
	if err != nil {
		return nil, fmt.Errorf("analysis: voltage gain %q -> %q: cap matrix: %w", inName, outName, err)
	}
	defer fact.Destroy()

	if nodeOut > nodeIn {
		nodeOut--
	}

	// Eliminate the input-derivative term: each state instantaneously
	// tracks the input by weight through pure capacitive coupling, so
	// that coupling moves into the feedthrough instead.
	weight, err := fact.Solve(cIn)
	if err != nil {
		return nil, err
	}
	gw := gCore.MulVec(weight)
	for i := range gIn {
		gIn[i] -= gw[i]
	}

	ss, err := solveStateMatrices(fact, gCore, gIn, nodeOut)
	if err != nil {
		return nil, err
	}
	ss.D = -weight[nodeOut]

	return ss, nil
}

// impedanceStateSpace builds the state-space system seen from an ideal
// current source at the input node to the voltage at the output node.
// A current excitation adds no algebraic constraint, so no row is
// dropped; if shortName is non-empty that node's row and column are
// removed instead, shorting it to AC ground.
func impedanceStateSpace(ckt *circuit.Circuit, inName, outName, shortName string) (*StateSpace, error) {
	nodeIn, err := portIndex(ckt, inName)
	if err != nil {
		return nil, err
	}
	nodeOut, err := portIndex(ckt, outName)
	if err != nil {
		return nil, err
	}

	size := ckt.NumNodes()
	nodeShort := matrix.NoNode
	if shortName != "" {
		nodeShort, err = portIndex(ckt, shortName)
		if err != nil {
			return nil, err
		}
		if nodeShort == nodeIn || nodeShort == nodeOut {
			return nil, fmt.Errorf("%w: %q", ErrShortedPort, shortName)
		}
		size--
	}

	gMat := matrix.Materialize(ckt.Conductance(), size, size, nodeShort, nodeShort)
	cMat := matrix.Materialize(ckt.Capacitance(), size, size, nodeShort, nodeShort)
	if nodeShort != matrix.NoNode {
		if nodeIn > nodeShort {
			nodeIn--
		}
		if nodeOut > nodeShort {
			nodeOut--
		}
	}

	fact, err := matrix.Factorize(cMat)
	if err != nil {
		return nil, fmt.Errorf("analysis: impedance gain %q -> %q: cap matrix: %w", inName, outName, err)
	}
	defer fact.Destroy()

	// Unit current injected into the input node.
	excitation := make([]float64, size)
	excitation[nodeIn] = -1

	ss, err := solveStateMatrices(fact, gMat, excitation, nodeOut)
	if err != nil {
		return nil, err
	}

	return ss, nil
}

// solveStateMatrices eliminates the capacitance matrix from the state
// equations: A = C^-1 (-G) column by column, B = C^-1 (-excitation),
// C selects the output state.
func solveStateMatrices(fact *matrix.Factorization, g *matrix.Coord, excitation []float64, nodeOut int) (*StateSpace, error) {
	size := fact.Size()

	a := mat.NewDense(size, size, nil)
	rhs := make([]float64, size)
	for j := 0; j < size; j++ {
		col := g.Column(j)
		for i := range col {
			rhs[i] = -col[i]
		}
		solved, err := fact.Solve(rhs)
		if err != nil {
			return nil, err
		}
		for i := range solved {
			a.Set(i, j, solved[i])
		}
	}

	for i := range excitation {
		rhs[i] = -excitation[i]
	}
	bCol, err := fact.Solve(rhs)
	if err != nil {
		return nil, err
	}
	b := mat.NewVecDense(size, bCol)

	cRow := mat.NewVecDense(size, nil)
	cRow.SetVec(nodeOut, 1)

	return &StateSpace{A: a, B: b, C: cRow}, nil
}
