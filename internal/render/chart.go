package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// TraceChart writes a PNG line chart of a biomass trajectory, with an
// optional horizontal reference line at the carrying capacity.
func TraceChart(path, title string, data []float64, capacity float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "timestep"
	p.Y.Label.Text = "biomass"

	xys := make(plotter.XYs, len(data))
	for i, v := range data {
		xys[i].X = float64(i)
		xys[i].Y = v
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 180, A: 255}
	p.Add(line)

	if capacity > 0 {
		ref := plotter.XYs{
			{X: 0, Y: capacity},
			{X: float64(len(data) - 1), Y: capacity},
		}
		refLine, err := plotter.NewLine(ref)
		if err != nil {
			return err
		}
		refLine.Color = color.RGBA{R: 200, A: 255}
		refLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(refLine)
		p.Legend.Add("K", refLine)
	}

	return p.Save(16*vg.Centimeter, 10*vg.Centimeter, path)
}
