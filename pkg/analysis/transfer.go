package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// TransferFunction is a rational function of the Laplace variable s,
// with numerator and denominator coefficients in descending powers.
type TransferFunction struct {
	Num []float64
	Den []float64
}

// TransferFunction converts the system to its rational transfer
// function C (sI - A)^-1 B + D. Leading numerator coefficients whose
// magnitude is within atol of zero are stripped; such coefficients are
// artifacts of finite-precision elimination, not real zeros at
// infinity, and left in place they make downstream root finding
// ill-conditioned.
func (ss *StateSpace) TransferFunction(atol float64) *TransferFunction {
	den := charPoly(ss.A)

	// num = charpoly(A - B C) + (D - 1) den, which equals
	// den * (C (sI - A)^-1 B + D) by the matrix determinant lemma.
	n, _ := ss.A.Dims()
	abc := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			abc.Set(i, j, ss.A.At(i, j)-ss.B.AtVec(i)*ss.C.AtVec(j))
		}
	}

	num := charPoly(abc)
	for i := range num {
		num[i] += (ss.D - 1) * den[i]
	}

	return &TransferFunction{
		Num: TrimLeading(num, atol),
		Den: den,
	}
}

// charPoly returns the characteristic polynomial coefficients of a in
// descending powers, leading coefficient 1, computed by the
// Faddeev-LeVerrier recurrence.
func charPoly(a *mat.Dense) []float64 {
	n, _ := a.Dims()

	coeffs := make([]float64, n+1)
	coeffs[0] = 1

	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}

	for k := 1; k <= n; k++ {
		am := mat.NewDense(n, n, nil)
		am.Mul(a, m)

		ck := -mat.Trace(am) / float64(k)
		coeffs[k] = ck

		m = am
		for i := 0; i < n; i++ {
			m.Set(i, i, m.At(i, i)+ck)
		}
	}

	return coeffs
}

// TrimLeading strips leading coefficients whose magnitude is at most
// atol, stopping at the first coefficient that exceeds it. At least one
// coefficient always remains.
func TrimLeading(coeffs []float64, atol float64) []float64 {
	for len(coeffs) > 1 && math.Abs(coeffs[0]) <= atol {
		coeffs = coeffs[1:]
	}
	return coeffs
}

// Eval evaluates the transfer function at a point of the complex
// s-plane.
func (tf *TransferFunction) Eval(s complex128) complex128 {
	return polyEval(tf.Num, s) / polyEval(tf.Den, s)
}

// AtFrequency evaluates the frequency response at freq hertz, i.e. at
// s = j*2*pi*freq.
func (tf *TransferFunction) AtFrequency(freq float64) complex128 {
	return tf.Eval(complex(0, 2*math.Pi*freq))
}

// polyEval evaluates a polynomial given in descending powers by
// Horner's rule.
func polyEval(coeffs []float64, s complex128) complex128 {
	var acc complex128
	for _, c := range coeffs {
		acc = acc*s + complex(c, 0)
	}
	return acc
}
