package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"ltispice/pkg/circuit"
	"ltispice/pkg/matrix"
)

func approxEqual(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol*math.Max(1, math.Abs(want)) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func approxEqualComplex(t *testing.T, name string, got, want complex128, tol float64) {
	t.Helper()
	if cmplx.Abs(got-want) > tol*math.Max(1, cmplx.Abs(want)) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestVoltageGainRCLowPass(t *testing.T) {
	const (
		res = 1e3
		cap = 1e-9
	)

	ckt := circuit.New()
	ckt.AddRes(res, "in", "out")
	ckt.AddCap(cap, "out", "gnd")

	tf, err := VoltageGain(ckt, "in", "out", 0)
	if err != nil {
		t.Fatalf("VoltageGain() error: %v", err)
	}

	if len(tf.Num) != 1 {
		t.Fatalf("numerator = %v, want a single coefficient", tf.Num)
	}
	if len(tf.Den) != 2 {
		t.Fatalf("denominator = %v, want two coefficients", tf.Den)
	}

	// Denominator proportional to [R*C, 1]: pole at 1/(R*C).
	approxEqual(t, "den[0]/den[1]", tf.Den[0]/tf.Den[1], res*cap, 1e-9)
	// Unity DC gain.
	approxEqual(t, "H(0)", real(tf.Eval(0)), 1.0, 1e-9)
	if imag(tf.Eval(0)) != 0 {
		t.Errorf("H(0) has imaginary part %v", imag(tf.Eval(0)))
	}

	// Half-power point at the pole frequency.
	poleFreq := 1 / (2 * math.Pi * res * cap)
	approxEqual(t, "|H(fp)|", cmplx.Abs(tf.AtFrequency(poleFreq)), 1/math.Sqrt2, 1e-9)
}

func TestVoltageGainVCCSSinglePole(t *testing.T) {
	const (
		gm  = 2e-3
		res = 5e3
		cap = 1e-12
	)

	ckt := circuit.New()
	ckt.AddGm(gm, "out", "gnd", "in", "gnd")
	ckt.AddRes(res, "out", "gnd")
	ckt.AddCap(cap, "out", "gnd")

	tf, err := VoltageGain(ckt, "in", "out", 0)
	if err != nil {
		t.Fatalf("VoltageGain() error: %v", err)
	}

	// DC gain -gm*R, pole at 1/(R*C).
	approxEqual(t, "H(0)", real(tf.Eval(0)), -gm*res, 1e-9)
	approxEqual(t, "den[0]/den[1]", tf.Den[0]/tf.Den[1], res*cap, 1e-9)

	poleFreq := 1 / (2 * math.Pi * res * cap)
	approxEqual(t, "|H(fp)|", cmplx.Abs(tf.AtFrequency(poleFreq)), gm*res/math.Sqrt2, 1e-9)
}

func TestVoltageGainCapacitiveFeedthrough(t *testing.T) {
	// Capacitive divider with a resistive pull-down:
	// H(s) = s*R*C1 / (1 + s*R*(C1+C2)).
	const (
		c1  = 2e-12
		c2  = 3e-12
		res = 1e4
	)

	ckt := circuit.New()
	ckt.AddCap(c1, "in", "out")
	ckt.AddCap(c2, "out", "gnd")
	ckt.AddRes(res, "out", "gnd")

	tf, err := VoltageGain(ckt, "in", "out", 0)
	if err != nil {
		t.Fatalf("VoltageGain() error: %v", err)
	}

	analytic := func(s complex128) complex128 {
		return s * complex(res*c1, 0) / (1 + s*complex(res*(c1+c2), 0))
	}

	for _, freq := range []float64{0, 1e5, 1e7, 1e9, 1e12} {
		s := complex(0, 2*math.Pi*freq)
		approxEqualComplex(t, "H", tf.Eval(s), analytic(s), 1e-9)
	}

	// The divider responds instantaneously at high frequency.
	approxEqual(t, "|H(inf)|", cmplx.Abs(tf.AtFrequency(1e15)), c1/(c1+c2), 1e-6)
}

func TestVoltageGainNodeOrderIndependence(t *testing.T) {
	const (
		res = 2e3
		cap = 4e-12
	)

	first := circuit.New()
	first.AddRes(res, "in", "out")
	first.AddCap(cap, "out", "gnd")

	second := circuit.New()
	second.AddCap(cap, "out", "gnd")
	second.AddRes(res, "in", "out")

	tf1, err := VoltageGain(first, "in", "out", 0)
	if err != nil {
		t.Fatalf("VoltageGain() error: %v", err)
	}
	tf2, err := VoltageGain(second, "in", "out", 0)
	if err != nil {
		t.Fatalf("VoltageGain() error: %v", err)
	}

	if len(tf1.Num) != len(tf2.Num) || len(tf1.Den) != len(tf2.Den) {
		t.Fatalf("shapes differ: %v/%v vs %v/%v", tf1.Num, tf1.Den, tf2.Num, tf2.Den)
	}
	for i := range tf1.Num {
		approxEqual(t, "num", tf2.Num[i], tf1.Num[i], 1e-9)
	}
	for i := range tf1.Den {
		approxEqual(t, "den", tf2.Den[i], tf1.Den[i], 1e-9)
	}
}

func TestVoltageGainSameNode(t *testing.T) {
	ckt := circuit.New()
	ckt.AddRes(1e3, "a", "b")

	if _, err := VoltageGain(ckt, "a", "a", 0); !errors.Is(err, ErrSameNode) {
		t.Errorf("error = %v, want ErrSameNode", err)
	}
}

func TestVoltageGainUnknownNode(t *testing.T) {
	ckt := circuit.New()
	ckt.AddRes(1e3, "a", "b")

	if _, err := VoltageGain(ckt, "a", "nowhere", 0); !errors.Is(err, circuit.ErrUnknownNode) {
		t.Errorf("error = %v, want ErrUnknownNode", err)
	}
}

func TestGroundPortRejected(t *testing.T) {
	ckt := circuit.New()
	ckt.AddRes(1e3, "a", "gnd")
	ckt.AddCap(1e-12, "a", "gnd")

	if _, err := VoltageGain(ckt, "vss", "a", 0); !errors.Is(err, ErrGroundNode) {
		t.Errorf("ground input: error = %v, want ErrGroundNode", err)
	}
	if _, err := Impedance(ckt, "gnd", 1e6, "", 0); !errors.Is(err, ErrGroundNode) {
		t.Errorf("ground impedance node: error = %v, want ErrGroundNode", err)
	}
}

func TestVoltageGainSingularCapMatrix(t *testing.T) {
	// "mid" has no capacitive path anywhere, so eliminating the
	// capacitance matrix must fail loudly.
	ckt := circuit.New()
	ckt.AddRes(1e3, "in", "mid")
	ckt.AddRes(1e3, "mid", "out")
	ckt.AddCap(1e-12, "out", "gnd")

	_, err := VoltageGain(ckt, "in", "out", 0)
	if err == nil {
		t.Fatal("VoltageGain() succeeded with a purely resistive node")
	}
	if !errors.Is(err, matrix.ErrSingular) {
		t.Errorf("error = %v, want ErrSingular", err)
	}
}

func TestImpedanceParallelRC(t *testing.T) {
	const (
		res = 10e3
		cap = 2e-12
	)

	ckt := circuit.New()
	ckt.AddRes(res, "node", "gnd")
	ckt.AddCap(cap, "node", "gnd")

	for _, freq := range []float64{0, 1e3, 1e6, 1e9} {
		z, err := Impedance(ckt, "node", freq, "", 0)
		if err != nil {
			t.Fatalf("Impedance() error at %v Hz: %v", freq, err)
		}
		want := 1 / complex(1/res, 2*math.Pi*freq*cap)
		approxEqualComplex(t, "Z", z, want, 1e-9)
	}
}

func TestImpedanceWithShort(t *testing.T) {
	const (
		r1 = 1e3
		r2 = 4e3
		c1 = 1e-12
		c2 = 2e-12
	)

	ckt := circuit.New()
	ckt.AddRes(r1, "a", "b")
	ckt.AddRes(r2, "b", "gnd")
	ckt.AddCap(c1, "a", "gnd")
	ckt.AddCap(c2, "b", "gnd")

	// With b shorted to ground only r1 and c1 load node a.
	for _, freq := range []float64{0, 1e6, 1e9} {
		z, err := Impedance(ckt, "a", freq, "b", 0)
		if err != nil {
			t.Fatalf("Impedance() error at %v Hz: %v", freq, err)
		}
		want := 1 / complex(1/r1, 2*math.Pi*freq*c1)
		approxEqualComplex(t, "Z", z, want, 1e-9)
	}
}

func TestImpedanceTransfer(t *testing.T) {
	// Current into "a", voltage at "b": a two-node RC tee.
	const (
		r1 = 1e3
		c1 = 1e-12
		c2 = 5e-12
	)

	ckt := circuit.New()
	ckt.AddCap(c1, "a", "gnd")
	ckt.AddRes(r1, "a", "b")
	ckt.AddCap(c2, "b", "gnd")

	tf, err := ImpedanceGain(ckt, "a", "b", "", 0)
	if err != nil {
		t.Fatalf("ImpedanceGain() error: %v", err)
	}

	// Z_ab(s) = 1 / (s*(C1+C2) + s^2*R*C1*C2).
	for _, freq := range []float64{1e3, 1e6, 1e9} {
		s := complex(0, 2*math.Pi*freq)
		want := 1 / (s*complex(c1+c2, 0) + s*s*complex(r1*c1*c2, 0))
		approxEqualComplex(t, "Z_ab", tf.Eval(s), want, 1e-9)
	}
}

func TestImpedanceShortedPort(t *testing.T) {
	ckt := circuit.New()
	ckt.AddRes(1e3, "a", "b")
	ckt.AddCap(1e-12, "a", "gnd")
	ckt.AddCap(1e-12, "b", "gnd")

	if _, err := ImpedanceGain(ckt, "a", "b", "a", 0); !errors.Is(err, ErrShortedPort) {
		t.Errorf("shorting the input: error = %v, want ErrShortedPort", err)
	}
	if _, err := ImpedanceGain(ckt, "a", "b", "b", 0); !errors.Is(err, ErrShortedPort) {
		t.Errorf("shorting the output: error = %v, want ErrShortedPort", err)
	}
}

func TestTransistorAmplifierGain(t *testing.T) {
	params := circuit.TransistorParams{
		Gm: 5e-3, Gds: 2e-4, Gb: 8e-4,
		Cgd: 3e-15, Cgs: 12e-15, Cgb: 2e-15,
		Cds: 1e-15, Cdb: 4e-15, Csb: 5e-15,
	}
	const loadRes = 2e3

	ckt := circuit.New()
	ckt.AddTransistor(params, "out", "in", "gnd", "gnd", 1)
	ckt.AddRes(loadRes, "out", "vdd")
	ckt.AddCap(50e-15, "out", "gnd")

	tf, err := VoltageGain(ckt, "in", "out", 0)
	if err != nil {
		t.Fatalf("VoltageGain() error: %v", err)
	}

	// DC gain -gm*(ro || RL) for a grounded-source stage.
	wantGain := -params.Gm / (params.Gds + 1/loadRes)
	approxEqual(t, "H(0)", real(tf.Eval(0)), wantGain, 1e-9)

	// Gain rolls off at high frequency.
	if cmplx.Abs(tf.AtFrequency(1e13)) >= math.Abs(wantGain) {
		t.Errorf("no high-frequency rolloff: |H| = %v", cmplx.Abs(tf.AtFrequency(1e13)))
	}
}
