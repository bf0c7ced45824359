package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/metrics"
)

// SweepPoint summarises the dose field of one yield in a sweep.
type SweepPoint struct {
	YieldKt    float64
	PeakDose   float64 // R
	PeakX      float64 // m downwind
	Metrics    map[string]float64
	Fatalities float64

	LowReliability bool
}

// SweepOptions selects what each point reports.
type SweepOptions struct {
	Thresholds []float64 // dose thresholds for area metrics, R
	Lethality  Lethality
	Density    float64 // people per km²; zero skips fatalities
}

// YieldSweep evaluates base at every yield over the same grid. Points keep
// the order of yields.
func YieldSweep(
	ctx context.Context,
	base fallout.Scenario,
	yields []float64,
	grid fallout.Grid,
	tabs fallout.Tables,
	opts SweepOptions,
	log logrus.FieldLogger,
) ([]SweepPoint, error) {
	fields, err := fallout.EvaluateAll(ctx, fallout.VaryYield(base, yields), grid, tabs, log)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(fields))
	for i, f := range fields {
		peak, x, _ := f.PeakDose()
		points[i] = SweepPoint{
			YieldKt:        f.Scenario.YieldKt,
			PeakDose:       peak,
			PeakX:          x,
			Metrics:        metrics.ApplyCells(f.Dose, f.Cells.Dose, f.CellArea(), metrics.Standard(opts.Thresholds...)...),
			LowReliability: f.LowReliability,
		}
		if opts.Density > 0 {
			points[i].Fatalities = opts.Lethality.ExpectedFatalities(f.ERD, f.CellArea(), opts.Density)
		}
	}
	return points, nil
}

// LogSteps returns n yields spaced evenly in log between lo and hi.
func LogSteps(lo, hi float64, n int) ([]float64, error) {
	if !(lo > 0) || !(hi > lo) || n < 2 {
		return nil, fmt.Errorf("analysis: need 0 < lo < hi and n >= 2, got %g, %g, %d", lo, hi, n)
	}
	out := make([]float64, n)
	step := math.Log(hi/lo) / float64(n-1)
	for i := range out {
		out[i] = lo * math.Exp(float64(i)*step)
	}
	out[0], out[n-1] = lo, hi
	return out, nil
}
