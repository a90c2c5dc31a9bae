package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart is a plot.Plotter drawing slices counter-clockwise from start.
// Each slice carries its share of the drawn total and its category label.
type pieChart struct {
	values []float64
	labels []string
	style  Style
}

func (pc *pieChart) total() float64 {
	var t float64
	for _, v := range pc.values {
		t += v
	}
	return t
}

// Percentages returns each slice's share of the drawn slices, in percent.
func (pc *pieChart) percentages() []float64 {
	total := pc.total()
	out := make([]float64, len(pc.values))
	if total <= 0 {
		return out
	}
	for i, v := range pc.values {
		out[i] = v / total * 100
	}
	return out
}

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	total := pc.total()
	if total <= 0 {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2 * 0.8

	inner := plt.Legend.TextStyle
	inner.XAlign = text.XCenter
	inner.YAlign = text.YCenter
	outer := inner

	at := func(angle float64, r vg.Length) vg.Point {
		return vg.Point{
			X: center.X + r*vg.Length(math.Cos(angle)),
			Y: center.Y + r*vg.Length(math.Sin(angle)),
		}
	}

	angle := pc.style.PieStart
	for i, pct := range pc.percentages() {
		sweep := pct / 100 * 2 * math.Pi

		var path vg.Path
		path.Move(center)
		path.Line(at(angle, radius))
		path.Arc(center, radius, angle, sweep)
		path.Close()
		c.SetColor(pc.style.color(i))
		c.Fill(path)

		mid := angle + sweep/2
		c.FillText(inner, at(mid, radius*0.6), fmt.Sprintf("%.1f%%", pct))

		if math.Cos(mid) < 0 {
			outer.XAlign = text.XRight
		} else {
			outer.XAlign = text.XLeft
		}
		c.FillText(outer, at(mid, radius*1.08), pc.labels[i])

		angle += sweep
	}
}
