package analysis

import (
	"math"
	"math/cmplx"
)

// FrequencyPoints generates a sweep of nPoints frequencies between
// fStart and fStop. pointsType selects the spacing: "DEC" (decade,
// logarithmic), "OCT" (octave) or "LIN" (linear).
func FrequencyPoints(fStart, fStop float64, nPoints int, pointsType string) []float64 {
	frequencies := make([]float64, nPoints)

	switch pointsType {
	case "DEC":
		logStart := math.Log10(fStart)
		logStop := math.Log10(fStop)
		step := (logStop - logStart) / float64(nPoints-1)
		for i := range nPoints {
			frequencies[i] = math.Pow(10, logStart+float64(i)*step)
		}

	case "OCT":
		logStart := math.Log2(fStart)
		logStop := math.Log2(fStop)
		step := (logStop - logStart) / float64(nPoints-1)
		for i := range nPoints {
			frequencies[i] = math.Pow(2, logStart+float64(i)*step)
		}

	case "LIN":
		step := (fStop - fStart) / float64(nPoints-1)
		for i := range nPoints {
			frequencies[i] = fStart + float64(i)*step
		}
	}

	return frequencies
}

// Response samples the transfer function at each frequency and returns
// the magnitude and the phase in degrees.
func (tf *TransferFunction) Response(frequencies []float64) (mag, phase []float64) {
	mag = make([]float64, len(frequencies))
	phase = make([]float64, len(frequencies))

	for i, freq := range frequencies {
		h := tf.AtFrequency(freq)
		mag[i] = cmplx.Abs(h)
		phase[i] = cmplx.Phase(h) * 180.0 / math.Pi
	}

	return mag, phase
}
