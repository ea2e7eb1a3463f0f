package matrix

import (
	"errors"
	"fmt"

	"github.com/edp1096/sparse"
)

// ErrSingular is returned when a matrix cannot be factorized. For a
// capacitance matrix this typically means a node with no capacitive
// path to the rest of the network.
var ErrSingular = errors.New("matrix: singular matrix")

// Factorization holds a factored sparse matrix for repeated solves.
// Solves share the underlying scratch vector, so a Factorization must
// not be used from multiple goroutines at once.
type Factorization struct {
	size   int
	matrix *sparse.Matrix
}

// Factorize builds and LU-factorizes a square sparse matrix from the
// coordinate list. A factorization failure reports ErrSingular.
func Factorize(c *Coord) (*Factorization, error) {
	if c.NumRows != c.NumCols {
		return nil, fmt.Errorf("matrix: cannot factorize %dx%d matrix", c.NumRows, c.NumCols)
	}

	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		Translate:      false,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
		Annotate:       0,
	}

	mat, err := sparse.Create(int64(c.NumRows), config)
	if err != nil {
		return nil, fmt.Errorf("matrix: creating %dx%d sparse matrix: %v", c.NumRows, c.NumCols, err)
	}

	for _, e := range c.Entries {
		mat.GetElement(int64(e.Row+1), int64(e.Col+1)).Real += e.Value
	}

	if err := mat.Factor(); err != nil {
		mat.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	return &Factorization{size: c.NumRows, matrix: mat}, nil
}

// Solve computes x for M x = rhs against the factored matrix. rhs is
// 0-based with length equal to the matrix size.
func (f *Factorization) Solve(rhs []float64) ([]float64, error) {
	if len(rhs) != f.size {
		return nil, fmt.Errorf("matrix: rhs length %d does not match matrix size %d", len(rhs), f.size)
	}

	// The solver is 1-based; index 0 is unused.
	buf := make([]float64, f.size+1)
	copy(buf[1:], rhs)

	solution, err := f.matrix.Solve(buf)
	if err != nil {
		return nil, fmt.Errorf("matrix: solve failed: %v", err)
	}

	return solution[1 : f.size+1], nil
}

// Size returns the matrix dimension.
func (f *Factorization) Size() int {
	return f.size
}

// Destroy releases the factorization's internal storage.
func (f *Factorization) Destroy() {
	if f.matrix != nil {
		f.matrix.Destroy()
		f.matrix = nil
	}
}
