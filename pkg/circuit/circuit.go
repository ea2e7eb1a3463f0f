package circuit

import (
	"errors"
	"fmt"

	"ltispice/pkg/matrix"
)

// Ground is the sentinel index of the AC-ground reference node.
const Ground = -1

// ErrUnknownNode is returned when a query names a node that was never
// referenced while building the circuit.
var ErrUnknownNode = errors.New("circuit: unknown node")

// Circuit models a linear time-invariant small-signal circuit built
// from resistors, capacitors, voltage controlled current sources and
// small-signal transistor models. Since the model is an AC small-signal
// one, "gnd", "vss" and "vdd" all name the same AC-ground reference.
//
// A Circuit is populated once through the Add methods and then queried
// through the analysis package; queries do not mutate it.
type Circuit struct {
	numNodes int
	nodeID   map[string]int
	gmat     matrix.Stamps
	cmat     matrix.Stamps
}

// New returns an empty circuit.
func New() *Circuit {
	return &Circuit{
		nodeID: map[string]int{
			"gnd": Ground,
			"vss": Ground,
			"vdd": Ground,
		},
		gmat: matrix.NewStamps(),
		cmat: matrix.NewStamps(),
	}
}

// nodeIndex resolves a net name to its index, allocating the next
// sequential index on first use. Allocation order fixes the row and
// column layout of every matrix built from this circuit.
func (c *Circuit) nodeIndex(name string) int {
	id, ok := c.nodeID[name]
	if !ok {
		id = c.numNodes
		c.nodeID[name] = id
		c.numNodes++
	}
	return id
}

// NodeIndex returns the index of an already-registered node, or the
// Ground sentinel for the reference aliases.
func (c *Circuit) NodeIndex(name string) (int, error) {
	id, ok := c.nodeID[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	return id, nil
}

// NumNodes returns the number of non-ground nodes registered so far.
func (c *Circuit) NumNodes() int {
	return c.numNodes
}

// Conductance returns the conductance stamp accumulator.
func (c *Circuit) Conductance() matrix.Stamps {
	return c.gmat
}

// Capacitance returns the capacitance stamp accumulator.
func (c *Circuit) Capacitance() matrix.Stamps {
	return c.cmat
}

// AddRes adds a resistor of res ohms between nodes p and n. A resistor
// between a node and itself is dropped.
func (c *Circuit) AddRes(res float64, pName, nName string) {
	p := c.nodeIndex(pName)
	n := c.nodeIndex(nName)
	stampTwoTerminal(c.gmat, 1/res, p, n)
}

// AddCap adds a capacitor of cap farads between nodes p and n. A
// capacitor between a node and itself is dropped.
func (c *Circuit) AddCap(cap float64, pName, nName string) {
	p := c.nodeIndex(pName)
	n := c.nodeIndex(nName)
	stampTwoTerminal(c.cmat, cap, p, n)
}

// stampTwoTerminal applies the symmetric [[+v,-v],[-v,+v]] pattern of a
// reciprocal two-terminal element. Terminals are reordered so the
// larger index comes first, which guarantees a ground terminal lands in
// the second slot and ground rows are never stamped.
func stampTwoTerminal(s matrix.Stamps, value float64, p, n int) {
	if p == n {
		return
	}
	if p < n {
		p, n = n, p
	}

	s.Add(p, p, value)
	if n >= 0 {
		s.Add(p, n, -value)
		s.Add(n, n, value)
		s.Add(n, p, -value)
	}
}

// AddGm adds a voltage controlled current source: a current of
// gm*(V(cp)-V(cn)) flows out of node p and into node n. The stamp is
// non-symmetric since a VCCS is a non-reciprocal element. Degenerate
// sources (p == n, or cp == cn) are dropped.
func (c *Circuit) AddGm(gm float64, pName, nName, cpName, cnName string) {
	p := c.nodeIndex(pName)
	n := c.nodeIndex(nName)
	cp := c.nodeIndex(cpName)
	cn := c.nodeIndex(cnName)

	if p == n || cp == cn {
		return
	}

	if cp >= 0 {
		if p >= 0 {
			c.gmat.Add(p, cp, gm)
		}
		if n >= 0 {
			c.gmat.Add(n, cp, -gm)
		}
	}
	if cn >= 0 {
		if p >= 0 {
			c.gmat.Add(p, cn, -gm)
		}
		if n >= 0 {
			c.gmat.Add(n, cn, gm)
		}
	}
}

// AddTransistor adds a small-signal transistor model between the given
// drain, gate, source and body nets. The one-finger parameters are
// scaled by fingers and decomposed into the standard hybrid-pi model: a
// gm source, an output resistance, a body transconductance and six
// junction/overlap capacitors.
func (c *Circuit) AddTransistor(params TransistorParams, dName, gName, sName, bName string, fingers int) {
	fg := float64(fingers)

	c.AddGm(params.Gm*fg, dName, sName, gName, sName)
	c.AddRes(1/(params.Gds*fg), dName, sName)
	c.AddGm(params.Gb*fg, dName, sName, bName, sName)
	c.AddCap(params.Cgd*fg, gName, dName)
	c.AddCap(params.Cgs*fg, gName, sName)
	c.AddCap(params.Cgb*fg, gName, bName)
	c.AddCap(params.Cds*fg, dName, sName)
	c.AddCap(params.Cdb*fg, dName, bName)
	c.AddCap(params.Csb*fg, sName, bName)
}
