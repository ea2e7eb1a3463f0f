package matrix

// NoNode marks an index argument as unused. It doubles as the ground
// sentinel: ground rows and columns are never stamped, so filtering on
// NoNode removes nothing.
const NoNode = -1

// Entry is one coordinate-list triplet.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// Coord is a coordinate-list matrix materialized from a Stamps
// accumulator.
type Coord struct {
	NumRows int
	NumCols int
	Entries []Entry
}

// Materialize converts an accumulator into a coordinate-list matrix of
// the given shape. If dropRow (dropCol) is not NoNode, entries on that
// row (column) are discarded and surviving indices above it are shifted
// down by one, so the result is the matrix with that row (column)
// physically removed. The same elimination serves both dropping an
// excitation row and shorting a node to ground.
func Materialize(s Stamps, numRows, numCols, dropRow, dropCol int) *Coord {
	c := &Coord{
		NumRows: numRows,
		NumCols: numCols,
		Entries: make([]Entry, 0, len(s)),
	}

	for key, value := range s {
		if key.Row == dropRow || key.Col == dropCol {
			continue
		}
		row, col := key.Row, key.Col
		if dropRow != NoNode && row > dropRow {
			row--
		}
		if dropCol != NoNode && col > dropCol {
			col--
		}
		c.Entries = append(c.Entries, Entry{Row: row, Col: col, Value: value})
	}

	return c
}

// ExtractColumn returns column col of the accumulator as a dense vector
// of length size, with row dropRow removed and rows above it shifted
// down, matching Materialize's row elimination.
func ExtractColumn(s Stamps, col, dropRow, size int) []float64 {
	vec := make([]float64, size)
	for key, value := range s {
		if key.Col != col || key.Row == dropRow {
			continue
		}
		row := key.Row
		if dropRow != NoNode && row > dropRow {
			row--
		}
		vec[row] += value
	}
	return vec
}

// Column returns column j as a dense vector of length NumRows.
func (c *Coord) Column(j int) []float64 {
	vec := make([]float64, c.NumRows)
	for _, e := range c.Entries {
		if e.Col == j {
			vec[e.Row] += e.Value
		}
	}
	return vec
}

// MulVec computes the matrix-vector product y = M x.
func (c *Coord) MulVec(x []float64) []float64 {
	y := make([]float64, c.NumRows)
	for _, e := range c.Entries {
		y[e.Row] += e.Value * x[e.Col]
	}
	return y
}
