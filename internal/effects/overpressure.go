// Package effects wraps digitized blast curves as effect models.
package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/effectsim/internal/graph"
	"github.com/san-kum/effectsim/internal/tables"
	"github.com/san-kum/effectsim/internal/units"
)

// ErrInvalidYield is returned for a yield that cannot be cube-root scaled.
var ErrInvalidYield = errors.New("effects: yield must be positive and finite")

// Overpressure is the peak overpressure of an air burst in the Mach
// reflection region, read from scaled-height curves.
type Overpressure struct {
	curves *graph.Family
}

func NewOverpressure(cat *tables.Catalog) (*Overpressure, error) {
	f, err := cat.Family(tables.SovietMachOverpressure)
	if err != nil {
		return nil, fmt.Errorf("effects: %w", err)
	}
	return &Overpressure{curves: f}, nil
}

// Scaled divides a distance by the cube root of yield, giving m/kt^(1/3).
func Scaled(distance, yieldKt float64) float64 {
	return distance / math.Cbrt(yieldKt)
}

// PeakKgfCm2 returns the peak overpressure in kgf/cm² at groundRange metres
// from a burst of yieldKt at height metres.
func (o *Overpressure) PeakKgfCm2(yieldKt, groundRange, height float64) (float64, error) {
	if !(yieldKt > 0) || math.IsInf(yieldKt, 0) {
		return 0, fmt.Errorf("%w: %g kt", ErrInvalidYield, yieldKt)
	}
	v, err := o.curves.Interpolate(Scaled(height, yieldKt), Scaled(groundRange, yieldKt))
	if err != nil {
		return 0, err
	}
	return math.Pow(10, v), nil
}

// Peak returns the peak overpressure in Pa.
func (o *Overpressure) Peak(yieldKt, groundRange, height float64) (float64, error) {
	p, err := o.PeakKgfCm2(yieldKt, groundRange, height)
	if err != nil {
		return 0, err
	}
	return units.KgfCm2ToPascals(p), nil
}

// Sample is one point of an overpressure profile.
type Sample struct {
	Range    float64 // m
	Pressure float64 // Pa
}

// Profile evaluates Peak along ranges, stopping at the first range outside
// the curves. It fails only if no range is covered.
func (o *Overpressure) Profile(yieldKt, height float64, ranges []float64) ([]Sample, error) {
	var out []Sample
	var first error
	for _, r := range ranges {
		p, err := o.Peak(yieldKt, r, height)
		if err != nil {
			if !errors.Is(err, graph.ErrOutOfDomain) {
				return nil, err
			}
			if first == nil {
				first = err
			}
			if len(out) > 0 {
				break
			}
			continue
		}
		out = append(out, Sample{Range: r, Pressure: p})
	}
	if len(out) == 0 {
		return nil, first
	}
	return out, nil
}
