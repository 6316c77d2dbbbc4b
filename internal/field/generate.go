package field

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform returns a grid with every cell drawn independently from a
// uniform distribution over [lo, hi), using the given seed. The same
// seed always yields the same grid.
func Uniform(rows, cols int, lo, hi float64, seed uint64) *Grid {
	u := distuv.Uniform{
		Min: lo,
		Max: hi,
		Src: rand.NewSource(seed),
	}
	g := NewGrid(rows, cols)
	for i := range g.data {
		g.data[i] = u.Rand()
	}
	return g
}

// GaussianFootprint builds a disturbance-intensity weight grid: a 2D
// Gaussian of the given sigma centered at (centerRow, centerCol), scaled
// so the center cell carries the peak weight. A peak below 1 keeps the
// footprint a removable fraction rather than a total loss.
func GaussianFootprint(rows, cols, centerRow, centerCol int, sigma, peak float64) *Grid {
	g := NewGrid(rows, cols)
	inv := 1.0 / (2 * sigma * sigma)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dr := float64(r - centerRow)
			dc := float64(c - centerCol)
			g.Set(r, c, peak*math.Exp(-(dr*dr+dc*dc)*inv))
		}
	}
	return g
}
