// Package optim searches scenario parameters for extreme outcomes.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/effectsim/internal/fallout"
)

// Searchable scenario parameters.
const (
	ParamYield    = "yield_kt"
	ParamWind     = "wind_mps"
	ParamWindFrom = "wind_from_deg"
	ParamShear    = "shear"
	ParamHOB      = "hob_m"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Objective scores one model. Larger is better unless the search minimises.
type Objective func(m *fallout.Model) (float64, error)

// DoseAt scores a model by the dose accumulated at a map point.
func DoseAt(p r2.Vec) Objective {
	return func(m *fallout.Model) (float64, error) {
		pt, err := m.AtMap(p)
		if err != nil {
			return 0, err
		}
		return pt.Dose, nil
	}
}

// Result is the best point of a search.
type Result struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Skipped   int // scenarios rejected by validation or table domains
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	minimize   bool
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if err := set(&fallout.Scenario{}, p, 0); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Minimize makes the search keep the smallest objective instead.
func (g *GridSearch) Minimize() *GridSearch {
	g.minimize = true
	return g
}

func set(sc *fallout.Scenario, name string, v float64) error {
	switch name {
	case ParamYield:
		sc.YieldKt = v
	case ParamWind:
		sc.Wind.Speed = v
	case ParamWindFrom:
		sc.Wind.Direction = v
	case ParamShear:
		sc.Shear = v
	case ParamHOB:
		sc.HeightOfBurst = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Search evaluates base with every combination of the parameter ranges.
// Scenarios that fail validation or fall outside a table are skipped; any
// other error stops the search.
func (g *GridSearch) Search(ctx context.Context, base fallout.Scenario, tabs fallout.Tables, objective Objective) (Result, error) {
	res := Result{Value: math.Inf(-1)}
	if g.minimize {
		res.Value = math.Inf(1)
	}

	if err := g.searchRecursive(ctx, 0, base, make(map[string]float64), tabs, objective, &res); err != nil {
		return Result{}, err
	}
	if res.Params == nil {
		return res, fmt.Errorf("optim: no valid scenario among %d", res.Skipped)
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	sc fallout.Scenario,
	current map[string]float64,
	tabs fallout.Tables,
	objective Objective,
	res *Result,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, err := fallout.New(sc, tabs)
		if err == nil {
			var val float64
			if val, err = objective(m); err == nil {
				g.keep(val, current, res)
				return nil
			}
		}
		if !fallout.Rejected(err) {
			return err
		}
		res.Skipped++
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		next := sc
		if err := set(&next, paramName, val); err != nil {
			return err
		}
		if err := g.searchRecursive(ctx, depth+1, next, newParams, tabs, objective, res); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) keep(val float64, current map[string]float64, res *Result) {
	res.Evaluated++

	better := val > res.Value
	if g.minimize {
		better = val < res.Value
	}
	if better || res.Params == nil {
		res.Value = val
		res.Params = make(map[string]float64, len(current))
		for k, v := range current {
			res.Params[k] = v
		}
	}
}

// Steps returns lo, lo+step, ... up to and including hi.
func Steps(lo, hi, step float64) ([]float64, error) {
	if !(step > 0) || hi < lo {
		return nil, fmt.Errorf("optim: need step > 0 and hi >= lo, got %g:%g:%g", lo, hi, step)
	}
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out, nil
}
