package regress

import (
	"math/rand"
	"runtime"
	"sync"
)

// Config holds forest hyperparameters. The zero value is not usable;
// call DefaultConfig and override fields as needed.
type Config struct {
	Trees    int   // number of bagged trees per attribute
	MaxDepth int   // maximum tree depth
	MinLeaf  int   // minimum training samples per leaf
	Seed     int64 // base seed; fixes bootstrap and feature sampling
}

// DefaultConfig returns the recommended hyperparameters.
func DefaultConfig() Config {
	return Config{
		Trees:    100,
		MaxDepth: 15,
		MinLeaf:  5,
		Seed:     42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = d.MinLeaf
	}
	return c
}

// Forest is a bagged ensemble of regression trees for a single target
// attribute. Once trained it is read-only and safe for concurrent
// prediction.
type Forest struct {
	Trees []*tree `json:"trees"`
}

// trainForest grows cfg.Trees bootstrap trees. Each tree gets its own
// RNG derived from (seed, tree index), so the result is bit-identical
// whether trees are built sequentially or on parallel workers.
func trainForest(x [][]float64, y []float64, cfg Config, seed int64) *Forest {
	n := len(x)
	params := treeParams{
		maxDepth: cfg.MaxDepth,
		minLeaf:  cfg.MinLeaf,
		mTry:     max(1, len(x[0])/3),
	}

	f := &Forest{Trees: make([]*tree, cfg.Trees)}

	workers := min(runtime.NumCPU(), cfg.Trees)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				rng := rand.New(rand.NewSource(seed + int64(k)))
				idx := bootstrap(n, rng)
				f.Trees[k] = growTree(x, y, idx, params, rng)
			}
		}()
	}

	for k := 0; k < cfg.Trees; k++ {
		jobs <- k
	}
	close(jobs)
	wg.Wait()

	return f
}

// bootstrap samples n indices with replacement.
func bootstrap(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

// Predict returns the mean prediction over all trees. Trees are
// accumulated in index order so the floating-point result is stable.
func (f *Forest) Predict(x []float64) float64 {
	var s float64
	for _, t := range f.Trees {
		s += t.predict(x)
	}
	return s / float64(len(f.Trees))
}
