// Package automation runs scripted batches of fallout scenarios and Monte
// Carlo studies of wind uncertainty.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/effectsim/internal/config"
	"github.com/san-kum/effectsim/internal/fallout"
)

// Script is a named sequence of scenarios evaluated over one grid.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from the base config, or from Preset when set, and applies
// the keys present in Scenario on top.
type Step struct {
	Name     string    `yaml:"name"`
	Preset   string    `yaml:"preset"`
	Scenario yaml.Node `yaml:"scenario"`
	Save     bool      `yaml:"save"`
}

// StepResult is one evaluated step.
type StepResult struct {
	Name   string
	Save   bool
	Config *config.Config
	Field  *fallout.Field
}

// LoadScript loads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script %q has no steps", s.Name)
	}
	return &s, nil
}

// resolve builds the config of a step. Presets supply their own grid, so
// steps mixing presets and base configs are evaluated per grid.
func (st Step) resolve(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if st.Preset != "" {
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", st.Preset)
		}
		cfg.Output = base.Output
	}
	if !st.Scenario.IsZero() {
		if err := st.Scenario.Decode(&cfg.Scenario); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScript validates every step, then evaluates them concurrently. Steps
// sharing a grid are evaluated as one batch.
func RunScript(ctx context.Context, script *Script, base *config.Config, tabs fallout.Tables, log logrus.FieldLogger) ([]StepResult, error) {
	results := make([]StepResult, len(script.Steps))
	batches := make(map[fallout.Grid][]int)
	var order []fallout.Grid

	for i, step := range script.Steps {
		cfg, err := step.resolve(base)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		results[i] = StepResult{Name: name, Save: step.Save, Config: cfg}

		g := cfg.FalloutGrid()
		if _, ok := batches[g]; !ok {
			order = append(order, g)
		}
		batches[g] = append(batches[g], i)
	}

	for _, g := range order {
		idx := batches[g]
		scenarios := make([]fallout.Scenario, len(idx))
		for k, i := range idx {
			scenarios[k] = results[i].Config.FalloutScenario()
		}

		log.WithFields(logrus.Fields{
			"script":    script.Name,
			"scenarios": len(scenarios),
			"nx":        g.Nx,
			"ny":        g.Ny,
		}).Info("evaluating batch")

		fields, err := fallout.EvaluateAll(ctx, scenarios, g, tabs, log)
		if err != nil {
			return nil, err
		}
		for k, i := range idx {
			results[i].Field = fields[k]
		}
	}
	return results, nil
}
