package graph

import (
	"fmt"
	"math"
	"sort"
)

// Curve is one member of a family: samples of value against x, tagged with
// the family parameter it was digitized at.
type Curve struct {
	Param float64
	X     []float64
	Y     []float64
}

// Family is a ragged curve family. Each curve has its own x samples, so the
// valid x range depends on the parameter.
//
// Lookups interpolate the two curves that bracket the parameter at x, then
// blend the results across the parameter. Values stored as logarithms with a
// Linear value scale are therefore blended in log space.
type Family struct {
	id     string
	param  Axis
	x      Axis
	value  Column
	curves []*Table
	tp     []float64
	domain familyDomain
}

// Interpolator is implemented by Table and Family.
type Interpolator interface {
	ID() string
	Domain() Domain
	Interpolate(coords ...float64) (float64, error)
	Each(fn func(coords, values []float64))
}

var (
	_ Interpolator = (*Table)(nil)
	_ Interpolator = (*Family)(nil)
)

// NewFamily builds a family from curves sorted by strictly increasing
// parameter. param and x supply names, units and scales; their Points are
// ignored. value supplies the value name, unit and scale.
func NewFamily(id string, param, x Axis, value Column, curves []Curve) (*Family, error) {
	if len(curves) < 2 {
		return nil, invalid("family %q needs at least 2 curves, got %d", id, len(curves))
	}

	f := &Family{
		id:     id,
		param:  param,
		x:      Axis{Name: x.Name, Unit: x.Unit, Scale: x.Scale},
		value:  Column{Name: value.Name, Unit: value.Unit, Scale: value.Scale},
		curves: make([]*Table, len(curves)),
		tp:     make([]float64, len(curves)),
	}
	f.param.Points = make([]float64, len(curves))
	for i, c := range curves {
		f.param.Points[i] = c.Param
	}
	if err := f.param.validate(); err != nil {
		return nil, fmt.Errorf("family %q: %w", id, err)
	}

	for i, c := range curves {
		t, err := New(
			fmt.Sprintf("%s[%s=%g]", id, param.Name, c.Param),
			[]Axis{{Name: x.Name, Unit: x.Unit, Scale: x.Scale, Points: c.X}},
			[]Column{{Name: value.Name, Unit: value.Unit, Scale: value.Scale, Values: c.Y}},
		)
		if err != nil {
			return nil, fmt.Errorf("family %q: %w", id, err)
		}
		f.curves[i] = t
		f.tp[i] = param.Scale.forward(c.Param)
	}
	f.domain = familyDomain{f: f}
	return f, nil
}

func (f *Family) ID() string     { return f.id }
func (f *Family) Dims() int      { return 2 }
func (f *Family) Domain() Domain { return f.domain }

// Param returns the parameter axis; its points are the curve parameters.
func (f *Family) Param() Axis {
	a := f.param
	a.Points = append([]float64(nil), a.Points...)
	return a
}

// Curve returns the 1-D table of the i-th curve.
func (f *Family) Curve(i int) *Table { return f.curves[i] }

func (f *Family) Len() int { return len(f.curves) }

// bracket returns the curve indices around p; lo == hi on an exact hit.
func (f *Family) bracket(p float64) (lo, hi int, w float64) {
	i := sort.SearchFloat64s(f.param.Points, p)
	if f.param.Points[i] == p {
		return i, i, 0
	}
	return i - 1, i, (f.param.Scale.forward(p) - f.tp[i-1]) / (f.tp[i] - f.tp[i-1])
}

// Interpolate evaluates the family at (param, x).
func (f *Family) Interpolate(coords ...float64) (float64, error) {
	if err := Guard(f.id, f.domain, coords); err != nil {
		return 0, err
	}
	p, x := coords[0], coords[1]
	lo, hi, w := f.bracket(p)

	v0, err := f.curves[lo].Interpolate(x)
	if err != nil {
		return 0, err
	}
	if lo == hi {
		return v0, nil
	}
	v1, err := f.curves[hi].Interpolate(x)
	if err != nil {
		return 0, err
	}
	s := f.value.Scale
	a, b := s.forward(v0), s.forward(v1)
	return s.inverse(a + w*(b-a)), nil
}

// Each visits every stored sample as (param, x) -> value.
func (f *Family) Each(fn func(coords, values []float64)) {
	coords := make([]float64, 2)
	for i, c := range f.curves {
		coords[0] = f.param.Points[i]
		c.Each(func(xs, vs []float64) {
			coords[1] = xs[0]
			fn(coords, vs)
		})
	}
}

// familyDomain admits x only where both bracketing curves have samples.
type familyDomain struct {
	f *Family
}

func (d familyDomain) Dims() int { return 2 }

func (d familyDomain) Check(coords []float64) error {
	f := d.f
	p, x := coords[0], coords[1]
	outer := Rect{{Axis: f.param.Name, Min: f.param.Min(), Max: f.param.Max()}}
	if err := outer.Check(coords[:1]); err != nil {
		return err
	}

	lo, hi, _ := f.bracket(p)
	a, b := f.curves[lo].axes[0], f.curves[hi].axes[0]
	xmin := math.Max(a.Min(), b.Min())
	xmax := math.Min(a.Max(), b.Max())
	if !(x >= xmin) {
		return &OutOfDomainError{Axis: f.x.Name, Index: 1, Value: x, Limit: xmin, Bound: Lower}
	}
	if !(x <= xmax) {
		return &OutOfDomainError{Axis: f.x.Name, Index: 1, Value: x, Limit: xmax, Bound: Upper}
	}
	return nil
}
