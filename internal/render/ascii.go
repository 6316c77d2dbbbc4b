package render

import (
	"github.com/guptarohit/asciigraph"
)

// TracePlot renders a biomass trajectory as a terminal line plot.
func TracePlot(data []float64, caption string) string {
	return asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// BandPlot overlays several trajectories (e.g. ensemble mean, min and
// max) on one terminal plot.
func BandPlot(series [][]float64, caption string) string {
	return asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red, asciigraph.Blue),
	)
}
