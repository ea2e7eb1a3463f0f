package matrix

// Key addresses one accumulator entry by a (row, column) pair of node
// indices.
type Key struct {
	Row int
	Col int
}

// Stamps accumulates matrix entries as circuit elements are stamped.
// Entries default to zero and accumulate additively, so multiple
// elements contributing to the same position sum.
type Stamps map[Key]float64

// NewStamps returns an empty accumulator.
func NewStamps() Stamps {
	return make(Stamps)
}

// Add accumulates value at (row, col).
func (s Stamps) Add(row, col int, value float64) {
	s[Key{Row: row, Col: col}] += value
}
