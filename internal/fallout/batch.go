package fallout

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EvaluateAll evaluates independent scenarios over the same grid in
// parallel. Results keep the order of scenarios; the first failure cancels
// the remaining work.
func EvaluateAll(ctx context.Context, scenarios []Scenario, grid Grid, tabs Tables, log logrus.FieldLogger) ([]*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	fields := make([]*Field, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, sc := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := Evaluate(sc, grid, tabs)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i, err)
			}
			fields[i] = f

			peak, _, _ := f.PeakDose()
			log.WithFields(logrus.Fields{
				"scenario":  i,
				"yield_kt":  sc.YieldKt,
				"wind_mps":  sc.Wind.Speed,
				"peak_dose": peak,
			}).Debug("scenario evaluated")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fields, nil
}

// VaryYield copies base once per yield.
func VaryYield(base Scenario, yields []float64) []Scenario {
	out := make([]Scenario, len(yields))
	for i, y := range yields {
		out[i] = base
		out[i].YieldKt = y
	}
	return out
}
