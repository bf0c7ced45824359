package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ramp characters, blank below the lowest level
var ramp = []rune{'.', ':', '-', '=', '+', '*', '#', '%', '@'}

// DecadeLevels returns n contour levels one decade apart, the highest one
// decade below peak rounded to a power of ten. It returns nil for a
// non-positive peak.
func DecadeLevels(peak float64, n int) []float64 {
	if !(peak > 0) || n <= 0 {
		return nil
	}
	top := math.Pow(10, math.Floor(math.Log10(peak)))
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = top / math.Pow(10, float64(n-1-i))
	}
	return levels
}

// BandOf returns the index of the highest level not above v, or -1.
func BandOf(v float64, levels []float64) int {
	b := -1
	for i, l := range levels {
		if v >= l {
			b = i
		}
	}
	return b
}

type sampler struct {
	xs, ys        []float64
	q             [][]float64
	width, height int
}

// at returns the node value nearest the centre of cell (col, row); row 0
// is the largest y.
func (s sampler) at(col, row int) float64 {
	i := (col*2 + 1) * len(s.xs) / (s.width * 2)
	j := len(s.ys) - 1 - (row*2+1)*len(s.ys)/(s.height*2)
	i = max(0, min(i, len(s.xs)-1))
	j = max(0, min(j, len(s.ys)-1))
	return s.q[j][i]
}

// Shade renders q as width x height characters, denser characters for
// higher bands. Rows run from the largest y at the top.
func Shade(xs, ys []float64, q [][]float64, levels []float64, width, height int) string {
	return shade(xs, ys, q, levels, width, height, nil)
}

// ShadeColor is Shade with each band coloured from the theme.
func ShadeColor(xs, ys []float64, q [][]float64, levels []float64, width, height int, t Theme) string {
	styles := make([]lipgloss.Style, len(levels))
	for i := range levels {
		styles[i] = lipgloss.NewStyle().Foreground(t.Band(i, len(levels)))
	}
	return shade(xs, ys, q, levels, width, height, styles)
}

func shade(xs, ys []float64, q [][]float64, levels []float64, width, height int, styles []lipgloss.Style) string {
	if len(xs) == 0 || len(ys) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	s := sampler{xs: xs, ys: ys, q: q, width: width, height: height}

	var b strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			band := BandOf(s.at(col, row), levels)
			if band < 0 {
				b.WriteByte(' ')
				continue
			}
			ch := ramp[band*len(ramp)/max(len(levels), 1)]
			if styles != nil {
				b.WriteString(styles[band].Render(string(ch)))
			} else {
				b.WriteRune(ch)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Outline plots the nodes where q exceeds threshold on a Braille canvas,
// with the wind axis y = 0 drawn through it.
func Outline(xs, ys []float64, q [][]float64, threshold float64, width, height int) *Canvas {
	c := NewCanvas(width, height, xs[0], xs[len(xs)-1], ys[0], ys[len(ys)-1])
	for j, y := range ys {
		for i, x := range xs {
			if q[j][i] > threshold {
				c.Plot(x, y)
			}
		}
	}
	if ys[0] <= 0 && ys[len(ys)-1] >= 0 {
		c.Line(xs[0], 0, xs[len(xs)-1], 0)
	}
	return c
}
