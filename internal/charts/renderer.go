package charts

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"vacstat/internal/core"
)

// GraphsDir is the directory under the media root that holds chart images.
const GraphsDir = "graphs"

var (
	ErrRender          = errors.New("render chart")
	ErrInvalidFileName = errors.New("invalid chart file name")
)

// Point is one entry of a series. Label names the X value on the axis or the
// category of a bar or slice. A NaN Y leaves a gap in line charts.
type Point struct {
	Label string
	X     float64
	Y     float64
}

type Series struct {
	XLabel string
	YLabel string
	Points []Point
}

// Renderer writes charts below Root/graphs.
type Renderer struct {
	Root  string
	Style Style
}

func NewRenderer(root string, style Style) *Renderer {
	return &Renderer{Root: root, Style: style}
}

// Render draws series as a chart of the given kind into
// Root/graphs/<outputName>.png and returns the path relative to Root.
// An existing file with the same name is replaced.
func (r *Renderer) Render(series Series, title, outputName string, kind core.ChartKind) (string, error) {
	rel, err := RelPath(outputName)
	if err != nil {
		return "", err
	}

	var (
		p    *plot.Plot
		size Size
	)
	switch kind {
	case core.ChartLine:
		p, err = r.line(series, title)
		size = r.Style.LineSize
	case core.ChartBar:
		p, err = r.bar(series, title)
		size = r.Style.BarSize
	case core.ChartPie:
		p = r.pie(series, title)
		size = r.Style.PieSize
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidChartKind, kind)
	}
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrRender, outputName, err)
	}

	if err := r.save(p, size, rel); err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrRender, outputName, err)
	}
	return rel, nil
}

// RelPath maps a chart name to its path relative to the media root.
func RelPath(outputName string) (string, error) {
	name := strings.TrimSpace(outputName)
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, outputName)
	}
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	return filepath.ToSlash(filepath.Join(GraphsDir, name)), nil
}

func (r *Renderer) newPlot(title string, series Series) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = series.XLabel
	p.Y.Label.Text = series.YLabel
	return p
}

func (r *Renderer) rotateX(p *plot.Plot) {
	p.X.Tick.Label.Rotation = r.Style.Rotation
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func (r *Renderer) line(series Series, title string) (*plot.Plot, error) {
	p := r.newPlot(title, series)
	if len(series.Points) == 0 {
		p.HideAxes()
		return p, nil
	}
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, 0, len(series.Points))
	ticks := make([]plot.Tick, 0, len(series.Points))
	for _, pt := range series.Points {
		label := pt.Label
		if label == "" {
			label = fmt.Sprintf("%g", pt.X)
		}
		ticks = append(ticks, plot.Tick{Value: pt.X, Label: label})
		if math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	r.rotateX(p)

	if len(xys) == 0 {
		return p, nil
	}
	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	l.Color = r.Style.color(0)
	l.Width = vg.Points(2)
	s.Shape = draw.CircleGlyph{}
	s.Color = r.Style.color(0)
	s.Radius = vg.Points(4)
	p.Add(l, s)
	return p, nil
}

func (r *Renderer) bar(series Series, title string) (*plot.Plot, error) {
	p := r.newPlot(title, series)
	pts := top(series.Points, r.Style.MaxBars)
	if len(pts) == 0 {
		p.HideAxes()
		return p, nil
	}
	p.Add(plotter.NewGrid())

	values := make(plotter.Values, len(pts))
	names := make([]string, len(pts))
	for i, pt := range pts {
		values[i] = pt.Y
		names[i] = pt.Label
	}
	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, err
	}
	bars.Color = r.Style.color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	r.rotateX(p)
	return p, nil
}

func (r *Renderer) pie(series Series, title string) *plot.Plot {
	p := r.newPlot(title, series)
	p.HideAxes()

	pts := top(series.Points, r.Style.MaxSlices)
	pc := &pieChart{style: r.Style}
	for _, pt := range pts {
		if pt.Y <= 0 || math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			continue
		}
		pc.values = append(pc.values, pt.Y)
		pc.labels = append(pc.labels, pt.Label)
	}
	if len(pc.values) > 0 {
		p.Add(pc)
	}
	return p
}

// save writes the plot next to its destination and renames it into place.
func (r *Renderer) save(p *plot.Plot, size Size, rel string) error {
	dst := filepath.Join(r.Root, filepath.FromSlash(rel))
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(r.Style.DPI))
	p.Draw(draw.New(c))

	tmp, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func top(pts []Point, n int) []Point {
	if n > 0 && len(pts) > n {
		return pts[:n]
	}
	return pts
}
