// Package charts renders aggregate series to PNG files.
//
// Every call builds its own plot from the Style it is given; there is no
// shared plotting state between calls.
package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/vg"
)

// Size is a figure size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// Style holds every constant that affects the rendered image.
type Style struct {
	LineSize  Size
	BarSize   Size
	PieSize   Size
	DPI       int
	Palette   []color.Color
	Rotation  float64 // category tick labels, radians
	MaxBars   int
	MaxSlices int
	// PieStart is the angle of the first slice edge, radians from the positive X axis.
	PieStart float64
}

// tab10
var defaultPalette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	color.RGBA{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	color.RGBA{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
	color.RGBA{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

func DefaultStyle() Style {
	return Style{
		LineSize:  Size{Width: 12 * vg.Inch, Height: 6 * vg.Inch},
		BarSize:   Size{Width: 15 * vg.Inch, Height: 8 * vg.Inch},
		PieSize:   Size{Width: 12 * vg.Inch, Height: 8 * vg.Inch},
		DPI:       150,
		Palette:   defaultPalette,
		Rotation:  math.Pi / 4,
		MaxBars:   20,
		MaxSlices: 10,
		PieStart:  math.Pi / 2,
	}
}

func (s Style) color(i int) color.Color {
	if len(s.Palette) == 0 {
		return color.Black
	}
	return s.Palette[i%len(s.Palette)]
}
