package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of headless runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from a preset (or the defaults), applies any keys given under
// config, then runs for Frames frames (DefaultFrames when unset).
type Step struct {
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	Frames int       `yaml:"frames"`
	SaveAs string    `yaml:"save_as"`
}

type StepResult struct {
	Step   int
	RunID  string
	Result *Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

// StepConfig builds the configuration for one step.
func (s Step) StepConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order. Steps with save_as are stored
// when st is non-nil.
func RunScenario(ctx context.Context, sc *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		slog.Info("scenario step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "preset", step.Preset)

		cfg, err := step.StepConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		frames := step.Frames
		if frames <= 0 {
			frames = DefaultFrames
		}
		res, err := Run(ctx, cfg, frames)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Result: res}
		if step.SaveAs != "" && st != nil {
			id, err := res.Save(st, step.SaveAs)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}
