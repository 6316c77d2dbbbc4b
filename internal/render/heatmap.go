// Package render turns finished biomass runs into terminal plots,
// images and animations. It only ever consumes a completed Series or
// Stack; nothing here feeds back into the engines.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"

	"github.com/js-arias/blind"

	"benthosim/internal/field"
)

// A Gradienter maps a normalized value in [0, 1] to a color.
type Gradienter interface {
	Gradient(v float64) color.Color
}

// Incandescent is the incandescent color scheme of Paul Tol, dark for
// depleted cells and bright for cells near carrying capacity.
type Incandescent struct{}

func (Incandescent) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return blind.Sequential(blind.Incandescent, v)
}

// Gray is a plain grayscale scheme.
type Gray struct{}

func (Gray) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c := uint8(v * 255)
	return color.RGBA{c, c, c, 255}
}

// Heatmap renders one biomass grid as an image, Cell pixels per cell.
// Lo and Hi fix the color scale so every frame of a run shares it.
type Heatmap struct {
	Grid     *field.Grid
	Lo, Hi   float64
	Cell     int
	Gradient Gradienter
}

func (h *Heatmap) bounds() (int, int) {
	cell := h.Cell
	if cell < 1 {
		cell = 1
	}
	rows, cols := h.Grid.Dims()
	return cols * cell, rows * cell
}

func (h *Heatmap) ColorModel() color.Model { return color.RGBAModel }

func (h *Heatmap) Bounds() image.Rectangle {
	w, ht := h.bounds()
	return image.Rect(0, 0, w, ht)
}

func (h *Heatmap) At(x, y int) color.Color {
	cell := h.Cell
	if cell < 1 {
		cell = 1
	}
	g := h.Gradient
	if g == nil {
		g = Incandescent{}
	}
	return g.Gradient(h.normalize(h.Grid.At(y/cell, x/cell)))
}

func (h *Heatmap) normalize(v float64) float64 {
	if h.Hi <= h.Lo {
		return 0
	}
	return (v - h.Lo) / (h.Hi - h.Lo)
}

// WritePNG encodes a single heatmap frame.
func WritePNG(w io.Writer, h *Heatmap) error {
	return png.Encode(w, h)
}

// WriteGIF encodes a whole stack as an animated GIF, one frame per
// timestep, with a shared color scale across frames. Delay is in
// hundredths of a second per frame.
func WriteGIF(w io.Writer, st *field.Stack, cell, delay int, grad Gradienter) error {
	if st.Len() == 0 {
		return fmt.Errorf("render: empty stack")
	}
	if grad == nil {
		grad = Incandescent{}
	}

	lo, hi := st.Bounds()
	pal := makePalette(grad)

	anim := &gif.GIF{}
	for t := 0; t < st.Len(); t++ {
		h := &Heatmap{Grid: st.Layer(t), Lo: lo, Hi: hi, Cell: cell, Gradient: grad}
		anim.Image = append(anim.Image, palettedFrame(h, pal))
		anim.Delay = append(anim.Delay, delay)
	}

	return gif.EncodeAll(w, anim)
}

// makePalette samples the gradient into the 256 colors a GIF frame can
// carry, so frames map values to palette indices directly instead of
// dithering.
func makePalette(grad Gradienter) color.Palette {
	pal := make(color.Palette, 256)
	for i := range pal {
		pal[i] = grad.Gradient(float64(i) / 255)
	}
	return pal
}

func palettedFrame(h *Heatmap, pal color.Palette) *image.Paletted {
	cell := h.Cell
	if cell < 1 {
		cell = 1
	}
	frame := image.NewPaletted(h.Bounds(), pal)
	rows, cols := h.Grid.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := h.normalize(h.Grid.At(r, c))
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			idx := uint8(v * 255)
			for y := r * cell; y < (r+1)*cell; y++ {
				for x := c * cell; x < (c+1)*cell; x++ {
					frame.SetColorIndex(x, y, idx)
				}
			}
		}
	}
	return frame
}
