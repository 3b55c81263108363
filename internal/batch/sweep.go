package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/metrics"
)

var sweepParams = map[string]func(c *config.Config, v float64){
	"count":          func(c *config.Config, v float64) { c.Count = int(math.Round(v)) },
	"speed":          func(c *config.Config, v float64) { c.Speed = v },
	"min_radius":     func(c *config.Config, v float64) { c.MinRadius = v },
	"max_radius":     func(c *config.Config, v float64) { c.MaxRadius = v },
	"link_distance":  func(c *config.Config, v float64) { c.LinkDistance = v },
	"max_link_alpha": func(c *config.Config, v float64) { c.MaxLinkAlpha = v },
	"width":          func(c *config.Config, v float64) { c.Width = int(math.Round(v)) },
	"height":         func(c *config.Config, v float64) { c.Height = int(math.Round(v)) },
}

func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for name := range sweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep runs one field per value of a single config parameter,
// spaced evenly from Min to Max.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
	Frames   int
}

type SweepResult struct {
	Value   float64
	Summary metrics.Summary
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

func (s *ParameterSweep) Run(ctx context.Context) ([]SweepResult, error) {
	set, ok := sweepParams[s.Param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (available: %v)", s.Param, SweepParams())
	}
	if err := checkPositive("steps", s.NumSteps); err != nil {
		return nil, err
	}
	if err := checkPositive("frames", s.Frames); err != nil {
		return nil, err
	}

	vals := s.Values()
	results := make([]SweepResult, 0, len(vals))
	for i, v := range vals {
		cfg := s.Base.Clone()
		set(cfg, v)
		if err := cfg.Validate(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", s.Param, v, err)
		}

		res, err := Run(ctx, cfg, s.Frames)
		if err != nil {
			return results, err
		}
		results = append(results, SweepResult{Value: v, Summary: res.Summary})

		slog.Debug("sweep step", "step", i+1, "of", len(vals), s.Param, v, "links_mean", res.Summary.LinksMean)
	}
	return results, nil
}
