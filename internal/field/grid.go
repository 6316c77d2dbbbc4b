package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is a dense row-major raster of float64 cells. Every cell is an
// independent scalar; there is no geospatial referencing and no
// neighbor-aware behavior.
type Grid struct {
	rows, cols int
	data       []float64
}

func NewGrid(rows, cols int) *Grid {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("field: invalid grid dimensions %dx%d", rows, cols))
	}
	return &Grid{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// NewGridFill returns a grid with every cell set to v.
func NewGridFill(rows, cols int, v float64) *Grid {
	g := NewGrid(rows, cols)
	for i := range g.data {
		g.data[i] = v
	}
	return g
}

// FromRows builds a grid from a rectangular [][]float64.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("field: empty row data")
	}
	g := NewGrid(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != g.cols {
			return nil, fmt.Errorf("field: ragged row data at row %d: %d != %d", i, len(r), g.cols)
		}
		copy(g.data[i*g.cols:], r)
	}
	return g, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Dims returns (rows, cols).
func (g *Grid) Dims() (int, int) { return g.rows, g.cols }

func (g *Grid) At(row, col int) float64 {
	return g.data[row*g.cols+col]
}

func (g *Grid) Set(row, col int, v float64) {
	g.data[row*g.cols+col] = v
}

// Values exposes the backing slice in row-major order.
// Mutating it mutates the grid.
func (g *Grid) Values() []float64 { return g.data }

func (g *Grid) Clone() *Grid {
	c := NewGrid(g.rows, g.cols)
	copy(c.data, g.data)
	return c
}

// SameShape reports whether o has identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.rows == o.rows && g.cols == o.cols
}

func (g *Grid) Min() float64 { return floats.Min(g.data) }
func (g *Grid) Max() float64 { return floats.Max(g.data) }

func (g *Grid) Mean() float64 {
	return floats.Sum(g.data) / float64(len(g.data))
}

// IsFinite reports whether every cell is a finite number.
func (g *Grid) IsFinite() bool {
	for _, v := range g.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Stack is an ordered sequence of same-shaped grids, one per timestep.
// Layer 0 is the seed state. A stack is immutable once built: engines
// construct the full layer slice and wrap it here.
type Stack struct {
	layers []*Grid
}

// NewStack wraps layers into a stack. All layers must share dimensions.
func NewStack(layers []*Grid) (*Stack, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("field: stack needs at least one layer")
	}
	for i, l := range layers {
		if l == nil {
			return nil, fmt.Errorf("field: nil layer at index %d", i)
		}
		if !layers[0].SameShape(l) {
			return nil, fmt.Errorf("field: layer %d dimensions differ from layer 0", i)
		}
	}
	return &Stack{layers: layers}, nil
}

func (s *Stack) Len() int { return len(s.layers) }

// Dims returns the shared (rows, cols) of every layer.
func (s *Stack) Dims() (int, int) { return s.layers[0].Dims() }

// Layer returns the grid at timestep t.
func (s *Stack) Layer(t int) *Grid { return s.layers[t] }

// Trace extracts the time series of a single cell across all layers.
func (s *Stack) Trace(row, col int) []float64 {
	out := make([]float64, len(s.layers))
	for t, l := range s.layers {
		out[t] = l.At(row, col)
	}
	return out
}

// Bounds returns the minimum and maximum cell value across all layers,
// for shared color scaling.
func (s *Stack) Bounds() (lo, hi float64) {
	lo, hi = s.layers[0].Min(), s.layers[0].Max()
	for _, l := range s.layers[1:] {
		lo = math.Min(lo, l.Min())
		hi = math.Max(hi, l.Max())
	}
	return lo, hi
}
