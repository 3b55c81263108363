package batch

import (
	"context"
	"sync"

	"github.com/san-kum/driftfield/internal/config"
)

// Ensemble runs the same configuration under consecutive seeds.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart uint64
	frames    int
}

func NewEnsemble(base *config.Config, numRuns int, seedStart uint64, frames int) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart, frames: frames}
}

// Run executes every member concurrently. Results are ordered by seed.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if err := checkPositive("runs", e.numRuns); err != nil {
		return nil, err
	}
	if err := checkPositive("frames", e.frames); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.base.Clone()
			cfg.Seed = e.seedStart + uint64(idx)

			results[idx], errs[idx] = Run(ctx, cfg, e.frames)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
