// Package analysis extracts frequency-domain transfer functions from a
// built small-signal circuit: voltage gain, impedance gain and nodal
// impedance between arbitrary pairs of circuit nodes.
package analysis

import (
	"ltispice/pkg/circuit"
)

// VoltageGain computes the voltage transfer function from inName,
// driven by an ideal voltage source, to the voltage at outName.
// Numerator coefficients within atol of zero are trimmed from the
// front; see TrimLeading.
func VoltageGain(ckt *circuit.Circuit, inName, outName string, atol float64) (*TransferFunction, error) {
	ss, err := voltageGainStateSpace(ckt, inName, outName)
	if err != nil {
		return nil, err
	}
	return ss.TransferFunction(atol), nil
}

// ImpedanceGain computes the impedance transfer function from a unit
// current injected into inName to the voltage at outName. inName and
// outName may be the same node, which yields the driving-point
// impedance. If shortName is non-empty that node is shorted to AC
// ground first, which is useful for output impedance.
func ImpedanceGain(ckt *circuit.Circuit, inName, outName, shortName string, atol float64) (*TransferFunction, error) {
	ss, err := impedanceStateSpace(ckt, inName, outName, shortName)
	if err != nil {
		return nil, err
	}
	return ss.TransferFunction(atol), nil
}

// Impedance computes the impedance looking into the given node at freq
// hertz: a current is injected into the node and the voltage on the
// same node is measured.
func Impedance(ckt *circuit.Circuit, nodeName string, freq float64, shortName string, atol float64) (complex128, error) {
	tf, err := ImpedanceGain(ckt, nodeName, nodeName, shortName, atol)
	if err != nil {
		return 0, err
	}
	return tf.AtFrequency(freq), nil
}
