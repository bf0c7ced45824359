package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/viz"
)

// FieldSVG renders q as a banded map, one rectangle per node above the
// lowest level, downwind to the right and left-of-wind at the top. cell is
// the node size in pixels.
func FieldSVG(f *fallout.Field, q [][]float64, levels []float64, cell float64, theme viz.Theme) string {
	if f == nil || len(levels) == 0 {
		return ""
	}

	nx, ny := f.Nx(), f.Ny()
	width := float64(nx) * cell
	height := float64(ny) * cell

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, theme.Background)

	for b := range levels {
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n", theme.Band(b, len(levels)))
		for j := 0; j < ny; j++ {
			y := float64(ny-1-j) * cell
			for i := 0; i < nx; i++ {
				if viz.BandOf(q[j][i], levels) != b {
					continue
				}
				fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, float64(i)*cell, y, cell, cell)
			}
		}
		sb.WriteString("</g>\n")
	}

	// ground zero and the wind axis
	if i, j, ok := origin(f); ok {
		cx := (float64(i) + 0.5) * cell
		cy := (float64(ny-1-j) + 0.5) * cell
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s"/>
`, cy, width, cy, theme.Muted, cx, cy, math.Max(cell, 3), theme.Error)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// origin returns the node nearest ground zero, if it lies on the grid.
func origin(f *fallout.Field) (i, j int, ok bool) {
	if f.X[0] > 0 || f.X[len(f.X)-1] < 0 || f.Y[0] > 0 || f.Y[len(f.Y)-1] < 0 {
		return 0, 0, false
	}
	for k, x := range f.X {
		if math.Abs(x) < math.Abs(f.X[i]) {
			i = k
		}
	}
	return i, f.CrosswindIndex(0), true
}

// ProfileSVG draws a line chart of ys against xs.
func ProfileSVG(xs, ys []float64, width, height int, stroke string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for k := range xs {
		minX, maxX = math.Min(minX, xs[k]), math.Max(maxX, xs[k])
		minY, maxY = math.Min(minY, ys[k]), math.Max(maxY, ys[k])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	rangeY *= 1.1

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke)

	for k := range xs {
		x := (xs[k] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[k]-minY)/rangeY*float64(height)
		if k == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
