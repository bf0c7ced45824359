package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/effectsim/internal/fallout"
)

// WindUncertainty is the standard deviation of the effective wind.
type WindUncertainty struct {
	Speed     float64 // m/s
	Direction float64 // degrees
}

// MonteCarloConfig perturbs the wind of Base and records the dose at
// Target for each trial.
type MonteCarloConfig struct {
	Base        fallout.Scenario
	Target      r2.Vec // map coordinates, m
	Uncertainty WindUncertainty
	Trials      int
	Seed        uint64 // zero seeds from the clock
	Threshold   float64
}

// MonteCarloResult summarises the dose distribution at the target.
type MonteCarloResult struct {
	Doses      []float64 // sorted ascending
	Mean       float64
	StdDev     float64
	P50        float64
	P90        float64
	P99        float64
	Exceedance float64 // fraction of trials above Threshold
	Skipped    int
}

// Quantile returns the empirical p-quantile of the trial doses.
func (r MonteCarloResult) Quantile(p float64) float64 {
	return stat.Quantile(p, stat.Empirical, r.Doses, nil)
}

// RunMonteCarlo draws wind speed and direction from normal distributions
// around the base wind. Speeds are clamped at zero. Trials whose scenario
// is invalid or falls outside a table are skipped; any other error ends
// the run.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, tabs fallout.Tables) (MonteCarloResult, error) {
	if cfg.Trials <= 0 {
		return MonteCarloResult{}, fmt.Errorf("automation: need at least one trial, got %d", cfg.Trials)
	}
	if cfg.Uncertainty.Speed < 0 || cfg.Uncertainty.Direction < 0 {
		return MonteCarloResult{}, fmt.Errorf("automation: negative wind uncertainty")
	}
	if err := cfg.Base.WithDefaults().Validate(); err != nil {
		return MonteCarloResult{}, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)

	speed := distuv.Normal{Mu: cfg.Base.Wind.Speed, Sigma: cfg.Uncertainty.Speed, Src: src}
	dir := distuv.Normal{Mu: cfg.Base.Wind.Direction, Sigma: cfg.Uncertainty.Direction, Src: src}

	var res MonteCarloResult
	res.Doses = make([]float64, 0, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return MonteCarloResult{}, err
		}

		sc := cfg.Base
		if cfg.Uncertainty.Speed > 0 {
			sc.Wind.Speed = math.Max(0, speed.Rand())
		}
		if cfg.Uncertainty.Direction > 0 {
			d := math.Mod(dir.Rand(), 360)
			if d < 0 {
				d += 360
			}
			sc.Wind.Direction = d
		}

		dose, err := doseAt(sc, cfg.Target, tabs)
		if err != nil {
			if fallout.Rejected(err) {
				res.Skipped++
				continue
			}
			return MonteCarloResult{}, fmt.Errorf("automation: trial %d: %w", trial+1, err)
		}
		res.Doses = append(res.Doses, dose)
	}
	if len(res.Doses) == 0 {
		return MonteCarloResult{}, fmt.Errorf("automation: all %d trials failed", cfg.Trials)
	}

	sort.Float64s(res.Doses)
	res.Mean, res.StdDev = stat.MeanStdDev(res.Doses, nil)
	res.P50 = res.Quantile(0.5)
	res.P90 = res.Quantile(0.9)
	res.P99 = res.Quantile(0.99)

	above := len(res.Doses) - sort.SearchFloat64s(res.Doses, math.Nextafter(cfg.Threshold, math.Inf(1)))
	res.Exceedance = float64(above) / float64(len(res.Doses))
	return res, nil
}

func doseAt(sc fallout.Scenario, target r2.Vec, tabs fallout.Tables) (float64, error) {
	m, err := fallout.New(sc, tabs)
	if err != nil {
		return 0, err
	}
	p, err := m.AtMap(target)
	if err != nil {
		return 0, err
	}
	return p.Dose, nil
}
