package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/viz"
)

// logGrid exposes a field quantity as log10 values over kilometre axes.
// Values below floor are raised to it.
type logGrid struct {
	f     *fallout.Field
	q     [][]float64
	floor float64
}

func (g logGrid) Dims() (c, r int)   { return g.f.Nx(), g.f.Ny() }
func (g logGrid) X(c int) float64    { return g.f.X[c] / 1e3 }
func (g logGrid) Y(r int) float64    { return g.f.Y[r] / 1e3 }
func (g logGrid) Z(c, r int) float64 { return math.Log10(math.Max(g.q[r][c], g.floor)) }

type bandPalette []color.Color

func (p bandPalette) Colors() []color.Color { return p }

func themePalette(t viz.Theme, n int) palette.Palette {
	p := make(bandPalette, n)
	for i := range p {
		r, g, b := viz.ParseHex(string(t.Band(i, n)))
		p[i] = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	}
	return p
}

// HeatmapPlot builds a log-scaled heat map of q with contour lines at
// levels. levels must be positive and increasing.
func HeatmapPlot(f *fallout.Field, q [][]float64, levels []float64, title string, t viz.Theme) (*plot.Plot, error) {
	if len(levels) == 0 || !(levels[0] > 0) {
		return nil, fmt.Errorf("export: heat map needs positive contour levels")
	}
	peak, _, _ := fallout.Peak(q)
	if !(peak > levels[0]) {
		return nil, fmt.Errorf("export: peak %g is below the lowest level %g", peak, levels[0])
	}

	g := logGrid{f: f, q: q, floor: levels[0] / 10}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "downwind (km)"
	p.Y.Label.Text = "crosswind (km)"

	h := plotter.NewHeatMap(g, palette.Heat(12, 1))
	h.Min = math.Log10(g.floor)
	h.Max = math.Log10(peak)
	p.Add(h)

	logLevels := make([]float64, len(levels))
	for i, l := range levels {
		logLevels[i] = math.Log10(l)
	}
	p.Add(plotter.NewContour(g, logLevels, themePalette(t, len(levels))))
	return p, nil
}

// HeatmapPNG writes the heat map as a PNG of the given size.
func HeatmapPNG(w io.Writer, f *fallout.Field, q [][]float64, levels []float64, title string, t viz.Theme, width, height vg.Length) error {
	p, err := HeatmapPlot(f, q, levels, title, t)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
