package metrics

import (
	"fmt"
	"math"
)

type Peak struct {
	name string
	max  float64
	seen bool
}

func NewPeak() *Peak {
	return &Peak{name: "peak"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(n Node) {
	if math.IsNaN(n.Value) {
		return
	}
	if !p.seen || n.Value > p.max {
		p.max = n.Value
		p.seen = true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return 0
	}
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.seen = false
}

// Integral is the area integral of the values, value·m², summed from the
// cell integrals.
type Integral struct {
	name string
	sum  float64
}

func NewIntegral() *Integral {
	return &Integral{name: "integral"}
}

func (g *Integral) Name() string { return g.name }

func (g *Integral) Observe(n Node) {
	if math.IsNaN(n.Integral) {
		return
	}
	g.sum += n.Integral
}

func (g *Integral) Value() float64 { return g.sum }
func (g *Integral) Reset()         { g.sum = 0 }

// AreaAbove is the ground area, m², where values exceed a threshold.
type AreaAbove struct {
	name      string
	threshold float64
	area      float64
}

func NewAreaAbove(threshold float64) *AreaAbove {
	return &AreaAbove{
		name:      fmt.Sprintf("area_above_%g", threshold),
		threshold: threshold,
	}
}

func (a *AreaAbove) Name() string { return a.name }

func (a *AreaAbove) Observe(n Node) {
	if n.Value > a.threshold {
		a.area += n.Area
	}
}

func (a *AreaAbove) Value() float64 { return a.area }
func (a *AreaAbove) Reset()         { a.area = 0 }

// Coverage is the fraction of nodes whose value exceeds a threshold.
type Coverage struct {
	name      string
	threshold float64
	hits      int
	samples   int
}

func NewCoverage(threshold float64) *Coverage {
	return &Coverage{name: "coverage", threshold: threshold}
}

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) Observe(n Node) {
	if n.Value > c.threshold {
		c.hits++
	}
	c.samples++
}

func (c *Coverage) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.samples)
}

func (c *Coverage) Reset() {
	c.hits = 0
	c.samples = 0
}
