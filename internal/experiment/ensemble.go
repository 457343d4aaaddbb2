package experiment

import (
	"context"
	"math/rand"
	"slices"
	"sync"

	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/world"
)

// Ensemble runs independent worlds that differ only in seed.
type Ensemble struct {
	base      Config
	numRuns   int
	seedStart int64
	opts      []world.Option
}

// NewEnsemble prepares numRuns members seeded from seedStart. opts apply to
// every member; each member then gets its own source seeded from its seed,
// so a shared world.WithRand is overridden.
func NewEnsemble(base Config, numRuns int, seedStart int64, opts ...world.Option) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart, opts: opts}
}

// Run executes every member concurrently. Results are indexed by seed
// offset; the first error wins.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.base
			if cfg.World != nil {
				cfg.World = cfg.World.Clone()
			} else {
				cfg.World = config.DefaultConfig()
			}
			cfg.World.Seed = e.seedStart + int64(idx)
			opts := append(slices.Clone(e.opts), world.WithRand(rand.New(rand.NewSource(cfg.World.Seed))))

			exp, err := New(cfg, opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = exp.Run(ctx)
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
