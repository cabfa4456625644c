package bench

import (
	"sync"
)

type baselineKey struct {
	algorithm string
	sizeMB    float64
}

// Baselines records the sequential mean time of each algorithm at each size.
type Baselines struct {
	mu    sync.Mutex
	times map[baselineKey]float64
}

// NewBaselines creates an empty store.
func NewBaselines() *Baselines {
	return &Baselines{times: make(map[baselineKey]float64)}
}

// Record stores the baseline for algorithm at sizeMB.
func (b *Baselines) Record(algorithm string, sizeMB, seconds float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.times[baselineKey{algorithm, sizeMB}] = seconds
}

// Lookup returns the baseline for algorithm at sizeMB, or zero.
func (b *Baselines) Lookup(algorithm string, sizeMB float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.times[baselineKey{algorithm, sizeMB}]
}
