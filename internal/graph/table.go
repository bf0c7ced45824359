package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Scale selects the space an axis or value column is interpolated in.
type Scale int

const (
	Linear Scale = iota
	Log
)

func (s Scale) String() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

// ParseScale accepts "linear" (or "") and "log".
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(s) {
	case "", "linear", "lin":
		return Linear, nil
	case "log":
		return Log, nil
	}
	return Linear, invalid("unknown scale %q", s)
}

func (s Scale) forward(v float64) float64 {
	if s == Log {
		return math.Log(v)
	}
	return v
}

func (s Scale) inverse(v float64) float64 {
	if s == Log {
		return math.Exp(v)
	}
	return v
}

// Axis is one independent variable with strictly increasing sample points.
type Axis struct {
	Name   string
	Unit   string
	Scale  Scale
	Points []float64
}

func (a Axis) Min() float64 { return a.Points[0] }
func (a Axis) Max() float64 { return a.Points[len(a.Points)-1] }

func (a Axis) validate() error {
	if a.Name == "" {
		return invalid("axis without a name")
	}
	if len(a.Points) < 2 {
		return invalid("axis %s: need at least 2 points, got %d", a.Name, len(a.Points))
	}
	for i, p := range a.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return invalid("axis %s: point %d is not finite", a.Name, i)
		}
		if a.Scale == Log && p <= 0 {
			return invalid("axis %s: log axis point %d = %g is not positive", a.Name, i, p)
		}
		if i > 0 && p <= a.Points[i-1] {
			return invalid("axis %s: points not strictly increasing at %d (%g after %g)",
				a.Name, i, p, a.Points[i-1])
		}
	}
	return nil
}

// Column is one dependent variable stored densely over the table axes in
// row-major order, the last axis varying fastest.
type Column struct {
	Name   string
	Unit   string
	Scale  Scale
	Values []float64
}

// Table is an immutable dense sample grid with one or more value columns.
// It is safe for concurrent use.
type Table struct {
	id      string
	axes    []Axis
	cols    []Column
	strides []int
	tx      [][]float64
	tv      [][]float64
	domain  Domain
}

// Option customises a Table at construction.
type Option func(*Table)

// WithDomain narrows the sampled rectangle with an extra predicate, for
// tables whose valid region is not rectangular.
func WithDomain(d Domain) Option {
	return func(t *Table) {
		t.domain = All(t.domain, d)
	}
}

// New builds a table from copies of axes and cols.
func New(id string, axes []Axis, cols []Column, opts ...Option) (*Table, error) {
	if len(axes) == 0 {
		return nil, invalid("table %q has no axes", id)
	}
	if len(cols) == 0 {
		return nil, invalid("table %q has no value columns", id)
	}

	t := &Table{
		id:      id,
		axes:    make([]Axis, len(axes)),
		cols:    make([]Column, len(cols)),
		strides: make([]int, len(axes)),
		tx:      make([][]float64, len(axes)),
		tv:      make([][]float64, len(cols)),
	}

	rect := make(Rect, len(axes))
	size := 1
	for i := len(axes) - 1; i >= 0; i-- {
		a := axes[i]
		if err := a.validate(); err != nil {
			return nil, fmt.Errorf("table %q: %w", id, err)
		}
		a.Points = append([]float64(nil), a.Points...)
		t.axes[i] = a
		t.strides[i] = size
		size *= len(a.Points)

		t.tx[i] = make([]float64, len(a.Points))
		for j, p := range a.Points {
			t.tx[i][j] = a.Scale.forward(p)
		}
		rect[i] = Interval{Axis: a.Name, Min: a.Min(), Max: a.Max()}
	}

	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c.Name == "" || seen[c.Name] {
			return nil, invalid("table %q: column %d has an empty or duplicate name", id, i)
		}
		seen[c.Name] = true
		if len(c.Values) != size {
			return nil, invalid("table %q: column %s has %d values, grid needs %d",
				id, c.Name, len(c.Values), size)
		}
		c.Values = append([]float64(nil), c.Values...)
		t.tv[i] = make([]float64, size)
		for j, v := range c.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, invalid("table %q: column %s value %d is not finite", id, c.Name, j)
			}
			if c.Scale == Log && v <= 0 {
				return nil, invalid("table %q: log column %s value %d = %g is not positive",
					id, c.Name, j, v)
			}
			t.tv[i][j] = c.Scale.forward(v)
		}
		t.cols[i] = c
	}

	t.domain = rect
	for _, opt := range opts {
		opt(t)
	}
	if t.domain.Dims() != len(axes) {
		return nil, invalid("table %q: domain has %d axes, table has %d", id, t.domain.Dims(), len(axes))
	}
	return t, nil
}

func (t *Table) ID() string      { return t.id }
func (t *Table) Dims() int       { return len(t.axes) }
func (t *Table) Domain() Domain  { return t.domain }
func (t *Table) Len() int        { return len(t.cols[0].Values) }
func (t *Table) NumColumns() int { return len(t.cols) }

// Axes returns copies of the table axes.
func (t *Table) Axes() []Axis {
	out := make([]Axis, len(t.axes))
	for i, a := range t.axes {
		a.Points = append([]float64(nil), a.Points...)
		out[i] = a
	}
	return out
}

// ColumnNames lists value columns in storage order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

func (t *Table) columnIndex(name string) (int, error) {
	for i, c := range t.cols {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: table %q has no column %q", ErrUnknownColumn, t.id, name)
}

// Interpolate evaluates the first value column.
func (t *Table) Interpolate(coords ...float64) (float64, error) {
	spans, err := t.locate(coords)
	if err != nil {
		return 0, err
	}
	return t.blend(0, spans), nil
}

// InterpolateColumn evaluates the named value column.
func (t *Table) InterpolateColumn(name string, coords ...float64) (float64, error) {
	c, err := t.columnIndex(name)
	if err != nil {
		return 0, err
	}
	spans, err := t.locate(coords)
	if err != nil {
		return 0, err
	}
	return t.blend(c, spans), nil
}

// InterpolateAll evaluates every value column at one point, sharing the
// bracketing work.
func (t *Table) InterpolateAll(coords ...float64) ([]float64, error) {
	spans, err := t.locate(coords)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.cols))
	for c := range t.cols {
		out[c] = t.blend(c, spans)
	}
	return out, nil
}

// Each visits every stored sample in storage order. The slices are reused
// between calls.
func (t *Table) Each(fn func(coords, values []float64)) {
	coords := make([]float64, len(t.axes))
	values := make([]float64, len(t.cols))
	for idx := 0; idx < t.Len(); idx++ {
		for a, ax := range t.axes {
			coords[a] = ax.Points[(idx/t.strides[a])%len(ax.Points)]
		}
		for c, col := range t.cols {
			values[c] = col.Values[idx]
		}
		fn(coords, values)
	}
}

type span struct {
	lo    int
	w     float64
	exact bool
}

func (t *Table) locate(coords []float64) ([]span, error) {
	if err := Guard(t.id, t.domain, coords); err != nil {
		return nil, err
	}
	spans := make([]span, len(t.axes))
	for a, ax := range t.axes {
		v := coords[a]
		i := sort.SearchFloat64s(ax.Points, v)
		if ax.Points[i] == v {
			spans[a] = span{lo: i, exact: true}
			continue
		}
		x0, x1 := t.tx[a][i-1], t.tx[a][i]
		spans[a] = span{lo: i - 1, w: (ax.Scale.forward(v) - x0) / (x1 - x0)}
	}
	return spans, nil
}

// blend gathers the 2^k corners around the query, k being the number of
// axes not hit exactly, and reduces them one axis at a time.
func (t *Table) blend(c int, spans []span) float64 {
	free := make([]int, 0, len(spans))
	base := 0
	for a, s := range spans {
		base += s.lo * t.strides[a]
		if !s.exact {
			free = append(free, a)
		}
	}
	if len(free) == 0 {
		return t.cols[c].Values[base]
	}

	n := 1 << len(free)
	vals := make([]float64, n)
	for m := 0; m < n; m++ {
		idx := base
		for bit, a := range free {
			if m>>bit&1 == 1 {
				idx += t.strides[a]
			}
		}
		vals[m] = t.tv[c][idx]
	}
	for _, a := range free {
		w := spans[a].w
		n >>= 1
		for m := 0; m < n; m++ {
			lo, hi := vals[2*m], vals[2*m+1]
			vals[m] = lo + w*(hi-lo)
		}
	}
	return t.cols[c].Scale.inverse(vals[0])
}
