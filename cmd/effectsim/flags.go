package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/effectsim/internal/analysis"
	"github.com/san-kum/effectsim/internal/config"
	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/metrics"
	"github.com/san-kum/effectsim/internal/units"
)

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml)")
	f.StringVar(&preset, "preset", "", "use a preset scenario")

	f.Float64Var(&yield, "yield", config.DefaultYield, "total yield")
	f.StringVar(&yieldUnit, "yield-unit", "kt", "unit of --yield (kt, mt)")
	f.Float64Var(&fission, "fission-fraction", fallout.DefaultFissionFraction, "fraction of yield from fission")
	f.Float64Var(&hob, "hob", 0, "height of burst (m)")
	f.Float64Var(&windSpeed, "wind", config.DefaultWind, "effective fallout wind speed")
	f.StringVar(&windUnit, "wind-unit", "m/s", "unit of --wind (m/s, km/h, mph)")
	f.Float64Var(&windFrom, "wind-from", config.DefaultDirection, "bearing the wind blows from (degrees clockwise from north)")
	f.Float64Var(&shear, "shear", 0, "crosswind shear ((m/s)/km)")
	f.Float64Var(&horizon, "horizon", fallout.DefaultHorizon, "dose accumulation horizon (h)")
	f.Float64Var(&groundZeroX, "gz-x", 0, "ground zero easting (m)")
	f.Float64Var(&groundZeroY, "gz-y", 0, "ground zero northing (m)")

	f.Float64Var(&downwind, "downwind", config.DefaultDownwind, "grid extent downwind (km)")
	f.Float64Var(&upwind, "upwind", config.DefaultUpwind, "grid extent upwind (km)")
	f.Float64Var(&crosswind, "crosswind", config.DefaultCrosswind, "grid half-width crosswind (km)")
	f.IntVar(&nx, "nx", config.DefaultNx, "grid nodes downwind")
	f.IntVar(&ny, "ny", config.DefaultNy, "grid nodes crosswind")
}

// resolveConfig layers defaults, then the preset, then the config file,
// then any flag set explicitly on cmd.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	s := &cfg.Scenario
	if changed("yield") || changed("yield-unit") {
		kt, err := units.Convert(yield, yieldUnit, "kt")
		if err != nil {
			return nil, fmt.Errorf("--yield-unit: %w", err)
		}
		s.YieldKt = kt
	}
	if changed("wind") || changed("wind-unit") {
		mps, err := units.Convert(windSpeed, windUnit, "m/s")
		if err != nil {
			return nil, fmt.Errorf("--wind-unit: %w", err)
		}
		s.WindSpeed = mps
	}
	if changed("fission-fraction") {
		s.FissionFraction = fission
	}
	if changed("hob") {
		s.HeightOfBurst = hob
	}
	if changed("wind-from") {
		s.WindDirection = windFrom
	}
	if changed("shear") {
		s.Shear = shear
	}
	if changed("horizon") {
		s.Horizon = horizon
	}
	if changed("gz-x") {
		s.GroundZeroX = groundZeroX
	}
	if changed("gz-y") {
		s.GroundZeroY = groundZeroY
	}

	g := &cfg.Grid
	if changed("downwind") {
		g.Downwind = downwind
	}
	if changed("upwind") {
		g.Upwind = upwind
	}
	if changed("crosswind") {
		g.Crosswind = crosswind
	}
	if changed("nx") {
		g.Nx = nx
	}
	if changed("ny") {
		g.Ny = ny
	}

	if !cmd.Flags().Changed("data") && cfg.Output.DataDir != "" && dataDir == config.DefaultDataDir {
		dataDir = cfg.Output.DataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// doseMetrics reports the standard dose metrics of f, plus expected
// fatalities from the residual dose when density is positive.
func doseMetrics(f *fallout.Field, thresholds []float64, density float64) map[string]float64 {
	results := metrics.ApplyCells(f.Dose, f.Cells.Dose, f.CellArea(), metrics.Standard(thresholds...)...)
	if density > 0 {
		results["fatalities"] = analysis.DefaultLethality().ExpectedFatalities(f.ERD, f.CellArea(), density)
	}
	return results
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func quantityUnit(name string) string {
	for _, q := range fallout.Quantities {
		if q.Name == name {
			return q.Unit
		}
	}
	return ""
}

func loadRunField(runID string) (*fallout.Field, map[string]float64, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	f, err := st.LoadField(runID)
	if err != nil {
		return nil, nil, err
	}
	return f, meta.Metrics, nil
}
