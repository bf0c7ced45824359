package config

import (
	"sort"

	"github.com/san-kum/effectsim/internal/units"
)

func preset(s ScenarioConfig, g GridConfig) *Config {
	cfg := DefaultConfig()
	if s.FissionFraction == 0 {
		s.FissionFraction = cfg.Scenario.FissionFraction
	}
	if s.Horizon == 0 {
		s.Horizon = cfg.Scenario.Horizon
	}
	cfg.Scenario = s
	cfg.Grid = g
	return cfg
}

var Presets = map[string]*Config{
	// 10 kt surface burst in a 2.3 mph southwest wind with 0.23 mph/kft
	// shear, the classic WSEG-10 worked example.
	"hanifen-10kt": preset(
		ScenarioConfig{
			YieldKt: 10, WindSpeed: units.MphToMps(2.30303), WindDirection: 225,
			Shear: units.ShearFromNative(0.23),
		},
		GridConfig{Downwind: 16, Upwind: 2, Crosswind: 5, Nx: 121, Ny: 81},
	),
	"megaton-surface": preset(
		ScenarioConfig{YieldKt: 1000, WindSpeed: 10, WindDirection: 270},
		GridConfig{Downwind: 300, Upwind: 20, Crosswind: 50, Nx: 161, Ny: 101},
	),
	"calm": preset(
		ScenarioConfig{YieldKt: 1000},
		GridConfig{Downwind: 20, Upwind: 20, Crosswind: 20, Nx: 81, Ny: 81},
	),
	"high-shear": preset(
		ScenarioConfig{YieldKt: 1000, WindSpeed: 10, WindDirection: 270, Shear: 2},
		GridConfig{Downwind: 300, Upwind: 20, Crosswind: 80, Nx: 161, Ny: 121},
	),
	"tactical": preset(
		ScenarioConfig{YieldKt: 5, FissionFraction: 0.5, WindSpeed: 5, WindDirection: 180, HeightOfBurst: 10},
		GridConfig{Downwind: 20, Upwind: 2, Crosswind: 4, Nx: 111, Ny: 41},
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
