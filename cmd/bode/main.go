// Command bode computes the voltage-gain transfer function of a sample
// common-source amplifier stage, prints its frequency response and
// renders Bode magnitude/phase plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ltispice/pkg/analysis"
	"ltispice/pkg/circuit"
	"ltispice/pkg/util"
)

func buildAmplifier() *circuit.Circuit {
	// Common-source NMOS stage: gate driven at "in", drain at "out"
	// loaded by a resistor to vdd (AC ground) and a load capacitor.
	params := circuit.TransistorParams{
		Gm:  5e-3,
		Gds: 2e-4,
		Gb:  8e-4,
		Cgd: 3e-15,
		Cgs: 12e-15,
		Cgb: 2e-15,
		Cds: 1e-15,
		Cdb: 4e-15,
		Csb: 5e-15,
	}

	ckt := circuit.New()
	ckt.AddTransistor(params, "out", "in", "gnd", "gnd", 4)
	ckt.AddRes(2e3, "out", "vdd")
	ckt.AddCap(50e-15, "out", "gnd")
	return ckt
}

func plotCurve(title, yLabel, file string, freqs, values []float64) error {
	pts := make(plotter.XYs, len(freqs))
	for i := range freqs {
		pts[i].X = freqs[i]
		pts[i].Y = values[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = yLabel
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("creating line plot: %v", err)
	}
	p.Add(plotter.NewGrid(), line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("saving %s: %v", file, err)
	}
	return nil
}

func main() {
	fStart := flag.Float64("fstart", 1e6, "sweep start frequency in Hz")
	fStop := flag.Float64("fstop", 1e12, "sweep stop frequency in Hz")
	nPoints := flag.Int("points", 61, "number of sweep points")
	atol := flag.Float64("atol", 0, "absolute tolerance for trimming numerator coefficients")
	outPrefix := flag.String("o", "bode", "output file prefix for the PNG plots")
	flag.Parse()

	ckt := buildAmplifier()

	tf, err := analysis.VoltageGain(ckt, "in", "out", *atol)
	if err != nil {
		log.Fatalf("voltage gain analysis: %v", err)
	}

	fmt.Printf("Voltage gain in -> out\n")
	fmt.Printf("  numerator:   %v\n", tf.Num)
	fmt.Printf("  denominator: %v\n", tf.Den)

	freqs := analysis.FrequencyPoints(*fStart, *fStop, *nPoints, "DEC")
	mag, phase := tf.Response(freqs)

	fmt.Println("\nFrequency       Gain          Phase")
	fmt.Println("-----------------------------------")
	magDB := make([]float64, len(mag))
	for i, freq := range freqs {
		magDB[i] = util.DB(mag[i])
		fmt.Printf("%s  %8.2f dB  %sdeg\n",
			util.FormatFrequency(freq), magDB[i], util.FormatPhase(phase[i]))
	}

	zin, err := analysis.Impedance(ckt, "out", *fStart, "", *atol)
	if err != nil {
		log.Fatalf("impedance analysis: %v", err)
	}
	fmt.Printf("\nZ(out) at %s: %s\n", util.FormatFrequency(*fStart), util.FormatImpedance(zin))

	magFile := *outPrefix + "_mag.png"
	phaseFile := *outPrefix + "_phase.png"
	if err := plotCurve("Bode magnitude", "Gain (dB)", magFile, freqs, magDB); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := plotCurve("Bode phase", "Phase (deg)", phaseFile, freqs, phase); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s, %s\n", magFile, phaseFile)
}
