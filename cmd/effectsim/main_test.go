package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/effectsim/internal/config"
	"github.com/san-kum/effectsim/internal/units"
)

func parsedCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addScenarioFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(parsedCmd(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := config.DefaultConfig()
	if cfg.Scenario != def.Scenario {
		t.Errorf("expected default scenario %+v, got %+v", def.Scenario, cfg.Scenario)
	}
	if cfg.Grid != def.Grid {
		t.Errorf("expected default grid %+v, got %+v", def.Grid, cfg.Grid)
	}
}

func TestResolveConfigUnits(t *testing.T) {
	cmd := parsedCmd(t, "--yield", "1.5", "--yield-unit", "MT", "--wind", "36", "--wind-unit", "km/h")
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(cfg.Scenario.YieldKt-1500) > 1e-9 {
		t.Errorf("expected 1500 kt, got %v", cfg.Scenario.YieldKt)
	}
	if math.Abs(cfg.Scenario.WindSpeed-10) > 1e-9 {
		t.Errorf("expected 10 m/s, got %v", cfg.Scenario.WindSpeed)
	}
}

func TestResolveConfigUnknownUnit(t *testing.T) {
	_, err := resolveConfig(parsedCmd(t, "--wind-unit", "furlong/fortnight"))
	if !errors.Is(err, units.ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
}

func TestResolveConfigPresetWithOverride(t *testing.T) {
	cfg, err := resolveConfig(parsedCmd(t, "--preset", "calm", "--yield", "100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calm := config.GetPreset("calm")
	if cfg.Scenario.YieldKt != 100 {
		t.Errorf("expected flag yield 100, got %v", cfg.Scenario.YieldKt)
	}
	if cfg.Grid != calm.Grid {
		t.Errorf("expected preset grid %+v, got %+v", calm.Grid, cfg.Grid)
	}
	if cfg.Scenario.WindSpeed != 0 {
		t.Errorf("expected calm wind, got %v", cfg.Scenario.WindSpeed)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	if _, err := resolveConfig(parsedCmd(t, "--preset", "nope")); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := config.DefaultConfig()
	cfg.Scenario.YieldKt = 300
	cfg.Scenario.Shear = 1.5
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := resolveConfig(parsedCmd(t, "--config", path, "--shear", "0.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scenario.YieldKt != 300 {
		t.Errorf("expected file yield 300, got %v", got.Scenario.YieldKt)
	}
	if got.Scenario.Shear != 0.5 {
		t.Errorf("expected flag shear 0.5, got %v", got.Scenario.Shear)
	}
}

func TestResolveConfigRejectsInvalid(t *testing.T) {
	if _, err := resolveConfig(parsedCmd(t, "--yield", "-1")); err == nil {
		t.Error("expected error for negative yield")
	}
	if _, err := resolveConfig(parsedCmd(t, "--nx", "1")); err == nil {
		t.Error("expected error for a one-node grid")
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := resolveConfig(parsedCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestThresholdsFromMetrics(t *testing.T) {
	results := map[string]float64{
		"peak":            1,
		"coverage":        2,
		"area_above_1000": 3,
		"area_above_100":  4,
		"area_above_300":  5,
	}
	got := thresholdsFromMetrics(results)
	want := []float64{100, 300, 1000}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestResample(t *testing.T) {
	data := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := resample(data, 3)
	if len(got) != 3 || got[0] != 0 || got[1] != 5 || got[2] != 10 {
		t.Errorf("expected [0 5 10], got %v", got)
	}
	if got := resample(data, 20); len(got) != len(data) {
		t.Errorf("expected data unchanged, got %d points", len(got))
	}
}

func TestParseFloats(t *testing.T) {
	got, err := parseFloats([]string{"1", "2.5", "1e3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 1 || got[1] != 2.5 || got[2] != 1000 {
		t.Errorf("expected [1 2.5 1000], got %v", got)
	}
	if _, err := parseFloats([]string{"x"}); err == nil {
		t.Error("expected error for non-numeric coordinate")
	}
}

func TestParseVary(t *testing.T) {
	names, ranges, err := parseVary([]string{"wind_from_deg=0:90:45", "shear=0:1:0.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "wind_from_deg" || names[1] != "shear" {
		t.Errorf("expected [wind_from_deg shear], got %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][2] != 90 {
		t.Errorf("expected [0 45 90], got %v", ranges[0])
	}
	if len(ranges[1]) != 3 || ranges[1][1] != 0.5 {
		t.Errorf("expected [0 0.5 1], got %v", ranges[1])
	}

	for _, bad := range []string{"shear", "shear=0:1", "shear=a:1:1", "shear=1:0:1"} {
		if _, _, err := parseVary([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
