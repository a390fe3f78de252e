package sbp

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// engine carries the per-call state shared by the drivers: the graph,
// configuration, logger and the seed stream that all parallel regions
// draw their worker seeds from. With one worker and a fixed seed every
// draw happens in the same order, so runs are reproducible.
type engine struct {
	graph *Graph
	cfg   *Config
	log   zerolog.Logger
	seeds *rand.Rand
}

func newEngine(g *Graph, cfg *Config) *engine {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &engine{
		graph: g,
		cfg:   cfg,
		log:   cfg.CreateLogger(),
		seeds: rand.New(rand.NewSource(cfg.RandomSeed())),
	}
}

// workerRNGs draws one independent stream per worker from the engine's
// seed source. Seeds are drawn up front so the number of draws does not
// depend on scheduling.
func (e *engine) workerRNGs(workers int) []*rand.Rand {
	rngs := make([]*rand.Rand, workers)
	for w := range rngs {
		rngs[w] = rand.New(rand.NewSource(e.seeds.Int63()))
	}
	return rngs
}

// parallelFor runs body(worker, i) for i in [0, n) across the given
// number of workers. Work is handed out through an atomic counter, so
// faster workers steal the remaining iterations. With one worker the
// iterations run in index order on the calling goroutine.
func parallelFor(workers, n int, body func(worker, i int)) {
	if n <= 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			body(0, i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				body(worker, i)
			}
		}(w)
	}
	wg.Wait()
}
