package graph

import (
	"errors"
	"fmt"
)

// Domain is a validity predicate over a full coordinate vector.
// Check returns nil or an *OutOfDomainError.
type Domain interface {
	Dims() int
	Check(coords []float64) error
}

// Interval bounds one named axis, inclusive at both ends.
type Interval struct {
	Axis     string
	Min, Max float64
}

// Rect is a hyper-rectangle with independent per-axis bounds.
type Rect []Interval

func (r Rect) Dims() int { return len(r) }

func (r Rect) Check(coords []float64) error {
	for i, iv := range r {
		v := coords[i]
		// written negated so NaN fails
		if !(v >= iv.Min) {
			return &OutOfDomainError{Axis: iv.Axis, Index: i, Value: v, Limit: iv.Min, Bound: Lower}
		}
		if !(v <= iv.Max) {
			return &OutOfDomainError{Axis: iv.Axis, Index: i, Value: v, Limit: iv.Max, Bound: Upper}
		}
	}
	return nil
}

// Limit bounds one axis by a value computed from the whole coordinate
// vector, such as a range limit that depends on yield.
type Limit struct {
	Axis  int
	Bound Bound
	At    func(coords []float64) float64
}

// Coupled is a non-rectangular domain: an outer rectangle narrowed by limits
// that couple axes together.
type Coupled struct {
	Rect   Rect
	Limits []Limit
}

func (c Coupled) Dims() int { return c.Rect.Dims() }

func (c Coupled) Check(coords []float64) error {
	if err := c.Rect.Check(coords); err != nil {
		return err
	}
	for _, l := range c.Limits {
		v, lim := coords[l.Axis], l.At(coords)
		ok := v >= lim
		if l.Bound == Upper {
			ok = v <= lim
		}
		if !ok {
			return &OutOfDomainError{
				Axis:  c.Rect[l.Axis].Axis,
				Index: l.Axis,
				Value: v,
				Limit: lim,
				Bound: l.Bound,
			}
		}
	}
	return nil
}

type intersection []Domain

// All intersects domains; the first violation wins. Nil entries are skipped.
func All(ds ...Domain) Domain {
	out := make(intersection, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

func (in intersection) Dims() int {
	if len(in) == 0 {
		return 0
	}
	return in[0].Dims()
}

func (in intersection) Check(coords []float64) error {
	for _, d := range in {
		if err := d.Check(coords); err != nil {
			return err
		}
	}
	return nil
}

// Guard validates coords against d on behalf of the named table. Every
// lookup in this package calls it before touching sample data.
func Guard(table string, d Domain, coords []float64) error {
	if len(coords) != d.Dims() {
		return fmt.Errorf("%w: table %q has %d axes, got %d coordinates",
			ErrDimension, table, d.Dims(), len(coords))
	}
	err := d.Check(coords)
	if err == nil {
		return nil
	}
	var ood *OutOfDomainError
	if errors.As(err, &ood) && ood.Table == "" {
		ood.Table = table
	}
	return err
}
