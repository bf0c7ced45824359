package viz

import (
	"strings"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// offset from U+2800.
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blankCell = 0x2800

// Canvas is a Braille dot raster mapped onto a rectangle of world
// coordinates, used for terminal maps of a field.
type Canvas struct {
	Width, Height int // cells
	Grid          [][]rune

	xmin, xmax, ymin, ymax float64
}

// NewCanvas covers [xmin, xmax] x [ymin, ymax] with w x h cells.
func NewCanvas(w, h int, xmin, xmax, ymin, ymax float64) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		xmin:   xmin, xmax: xmax, ymin: ymin, ymax: ymax,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blankCell
		}
	}
	return c
}

// Set turns on the dot at (x, y) in dot coordinates, y growing downward.
// The canvas is Width*2 by Height*4 dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

// dot maps world coordinates to dot coordinates.
func (c *Canvas) dot(x, y float64) (int, int) {
	dx := float64(c.Width*2 - 1)
	dy := float64(c.Height*4 - 1)
	px := (x - c.xmin) / (c.xmax - c.xmin) * dx
	py := (c.ymax - y) / (c.ymax - c.ymin) * dy
	return int(px + 0.5), int(py + 0.5)
}

// Plot sets the dot nearest world point (x, y).
func (c *Canvas) Plot(x, y float64) {
	px, py := c.dot(x, y)
	c.Set(px, py)
}

// Line draws between two world points.
func (c *Canvas) Line(x0, y0, x1, y1 float64) {
	a, b := c.dot(x0, y0)
	p, q := c.dot(x1, y1)
	c.DrawLine(a, b, p, q)
}

// DrawLine draws a line in dot coordinates (Bresenham).
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
