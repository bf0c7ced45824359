package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/effectsim/internal/fallout"
)

const (
	DefaultYield     = 1000.0
	DefaultWind      = 10.0
	DefaultDirection = 270.0
	DefaultDownwind  = 300.0
	DefaultUpwind    = 20.0
	DefaultCrosswind = 50.0
	DefaultNx        = 161
	DefaultNy        = 101
	DefaultDataDir   = ".effectsim"
	DefaultTheme     = "default"
)

type Config struct {
	Scenario ScenarioConfig `yaml:"scenario"`
	Grid     GridConfig     `yaml:"grid"`
	Output   OutputConfig   `yaml:"output"`
}

type ScenarioConfig struct {
	YieldKt         float64 `yaml:"yield_kt"`
	FissionFraction float64 `yaml:"fission_fraction"`
	HeightOfBurst   float64 `yaml:"height_of_burst_m"`
	GroundZeroX     float64 `yaml:"ground_zero_x_m"`
	GroundZeroY     float64 `yaml:"ground_zero_y_m"`
	WindSpeed       float64 `yaml:"wind_speed_mps"`
	WindDirection   float64 `yaml:"wind_direction_deg"`
	Shear           float64 `yaml:"shear_mps_per_km"`
	Horizon         float64 `yaml:"horizon_h"`
}

// GridConfig spans the wind frame in kilometres.
type GridConfig struct {
	Downwind  float64 `yaml:"downwind_km"`
	Upwind    float64 `yaml:"upwind_km"`
	Crosswind float64 `yaml:"crosswind_km"`
	Nx        int     `yaml:"nx"`
	Ny        int     `yaml:"ny"`
}

type OutputConfig struct {
	DataDir    string    `yaml:"data_dir"`
	Theme      string    `yaml:"theme"`
	Thresholds []float64 `yaml:"thresholds_r"`
	Density    float64   `yaml:"population_per_km2"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: ScenarioConfig{
			YieldKt:         DefaultYield,
			FissionFraction: fallout.DefaultFissionFraction,
			WindSpeed:       DefaultWind,
			WindDirection:   DefaultDirection,
			Horizon:         fallout.DefaultHorizon,
		},
		Grid: GridConfig{
			Downwind:  DefaultDownwind,
			Upwind:    DefaultUpwind,
			Crosswind: DefaultCrosswind,
			Nx:        DefaultNx,
			Ny:        DefaultNy,
		},
		Output: OutputConfig{
			DataDir:    DefaultDataDir,
			Theme:      DefaultTheme,
			Thresholds: []float64{100, 300, 1000},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) FalloutScenario() fallout.Scenario {
	s := c.Scenario
	return fallout.Scenario{
		YieldKt:         s.YieldKt,
		FissionFraction: s.FissionFraction,
		HeightOfBurst:   s.HeightOfBurst,
		GroundZero:      r2.Vec{X: s.GroundZeroX, Y: s.GroundZeroY},
		Wind:            fallout.Wind{Speed: s.WindSpeed, Direction: s.WindDirection},
		Shear:           s.Shear,
		Horizon:         s.Horizon,
	}
}

func (c *Config) FalloutGrid() fallout.Grid {
	g := c.Grid
	return fallout.Grid{
		DownwindMin:  -g.Upwind * 1e3,
		DownwindMax:  g.Downwind * 1e3,
		CrosswindMin: -g.Crosswind * 1e3,
		CrosswindMax: g.Crosswind * 1e3,
		Nx:           g.Nx,
		Ny:           g.Ny,
	}
}

// Validate checks the scenario and grid without touching any table.
func (c *Config) Validate() error {
	if err := c.FalloutScenario().Validate(); err != nil {
		return err
	}
	return c.FalloutGrid().Validate()
}

func (c *Config) Clone() *Config {
	out := *c
	out.Output.Thresholds = append([]float64(nil), c.Output.Thresholds...)
	return &out
}
