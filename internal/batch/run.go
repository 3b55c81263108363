// Package batch runs fields headlessly: single runs, seeded ensembles,
// parameter sweeps and scripted scenarios.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/driftfield/internal/anim"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/storage"
	"github.com/san-kum/driftfield/internal/surface"
)

const DefaultFrames = 600

// ErrNonPositive is returned for run, frame and step counts below 1.
var ErrNonPositive = errors.New("batch: count must be at least 1")

func checkPositive(what string, n int) error {
	if n < 1 {
		return fmt.Errorf("%s %d: %w", what, n, ErrNonPositive)
	}
	return nil
}

// Result is one finished headless run.
type Result struct {
	Config  *config.Config
	Field   *field.Field
	Samples []metrics.Sample
	Summary metrics.Summary
	Elapsed time.Duration
}

// Run samples a field from cfg and advances it frames times without
// drawing anything. cfg.Seed is filled in when zero. A cancelled ctx stops
// the run early; the partial result is returned with ctx's error.
func Run(ctx context.Context, cfg *config.Config, frames int, observers ...anim.Observer) (*Result, error) {
	if err := checkPositive("frames", frames); err != nil {
		return nil, err
	}
	f, err := cfg.NewField()
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(frames)
	opts := []anim.Option{anim.WithFPS(cfg.FPS), anim.WithObserver(collector)}
	for _, o := range observers {
		opts = append(opts, anim.WithObserver(o))
	}
	a, err := anim.New(f, surface.Discard, opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = a.RunFrames(ctx, frames)
	return &Result{
		Config:  cfg,
		Field:   f,
		Samples: collector.Samples(),
		Summary: collector.Summary(),
		Elapsed: time.Since(start),
	}, err
}

// Save stores the result under name.
func (r *Result) Save(st *storage.Store, name string) (string, error) {
	return st.Save(storage.Run{
		Name:    name,
		Seed:    r.Config.Seed,
		Config:  r.Config,
		Field:   r.Field,
		Samples: r.Samples,
		Summary: r.Summary,
	})
}
