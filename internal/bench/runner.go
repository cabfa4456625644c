package bench

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/idelchi/cipherbench/internal/cipher"
	"github.com/idelchi/cipherbench/internal/power"
)

// PowerMonitor brackets a measured region with an energy reading.
type PowerMonitor interface {
	Start()
	Stop() power.Reading
	Source() string
}

// Point is one test point: how much data to push through an engine, and how often.
type Point struct {
	// Threads is the reported thread count and the divisor of efficiency.
	Threads int
	// SizeMB is the logical data size that throughput is computed against.
	SizeMB float64
	// BlockMB is set for block-size sweep points.
	BlockMB float64
	// ChunkBytes is the length of every Encrypt call.
	ChunkBytes int
	// Chunks is the number of Encrypt calls per iteration.
	Chunks     int
	Iterations int
	Warmup     int
	Verify     bool
	// Baseline makes sequential points record, and other points consult, the baseline store.
	Baseline bool
}

func (p Point) validate(data []byte) error {
	switch {
	case p.ChunkBytes <= 0 || p.Chunks <= 0:
		return fmt.Errorf("%w: %d chunks of %d bytes", ErrInvalidPoint, p.Chunks, p.ChunkBytes)
	case p.Iterations < 1:
		return fmt.Errorf("%w: %d iterations", ErrInvalidPoint, p.Iterations)
	case len(data) < p.ChunkBytes:
		return fmt.Errorf("%w: %d byte buffer for %d byte chunks", ErrInvalidPoint, len(data), p.ChunkBytes)
	}

	return nil
}

// Runner measures test points. It is not safe for concurrent use.
type Runner struct {
	keys      cipher.KeyMaterial
	monitor   PowerMonitor
	baselines *Baselines
	platform  string
	runID     string
	onPhase   func(engine string, phase Phase)
}

// Option configures a Runner.
type Option func(*Runner)

// WithPlatform overrides the platform label.
func WithPlatform(platform string) Option {
	return func(r *Runner) { r.platform = platform }
}

// WithRunID stamps every result with id.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// WithBaselines shares a baseline store between runners.
func WithBaselines(baselines *Baselines) Option {
	return func(r *Runner) { r.baselines = baselines }
}

// WithPhaseHook calls fn on every phase transition.
func WithPhaseHook(fn func(engine string, phase Phase)) Option {
	return func(r *Runner) { r.onPhase = fn }
}

// New creates a runner that encrypts with keys and measures energy with monitor.
// A nil monitor records no energy.
func New(keys cipher.KeyMaterial, monitor PowerMonitor, opts ...Option) *Runner {
	if monitor == nil {
		monitor = power.NewMonitor()
	}

	runner := &Runner{
		keys:      keys,
		monitor:   monitor,
		baselines: NewBaselines(),
		platform:  Platform(),
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// Baselines returns the runner's baseline store.
func (r *Runner) Baselines() *Baselines {
	return r.baselines
}

// Run measures engine at point over data[:point.ChunkBytes].
//
// Unavailable engines and engines that cannot acquire their resources, while initializing
// or while encrypting, are Skipped.
// Any other failure Aborts the point and is returned. A verification mismatch is
// not an error: the point is Measured with Verified false.
// Cleanup runs whenever Initialize was attempted.
func (r *Runner) Run(engine cipher.Engine, point Point, data []byte) (Result, Outcome, error) {
	id := cipher.ID(engine)
	log := slog.With("engine", id, "size_mb", point.SizeMB, "threads", point.Threads)

	r.transition(log, id, Idle)

	if err := point.validate(data); err != nil {
		return Result{}, Aborted, err
	}

	if !engine.Available() {
		log.Info("engine not available, skipping")

		return Result{}, Skipped, fmt.Errorf("%s: %w", id, cipher.ErrBackendUnavailable)
	}

	r.transition(log, id, Initializing)

	defer func() {
		if err := engine.Cleanup(); err != nil {
			log.Warn("cleanup failed", "error", err)
		}
	}()

	if err := engine.Initialize(); err != nil {
		if cipher.Skippable(err) {
			log.Info("engine could not be initialized, skipping", "error", err)

			return Result{}, Skipped, fmt.Errorf("initializing %s: %w", id, err)
		}

		log.Warn("engine initialization failed", "error", err)

		return Result{}, Aborted, fmt.Errorf("initializing %s: %w", id, err)
	}

	m, err := r.measure(log, engine, point, data[:point.ChunkBytes])
	if err != nil {
		if cipher.Skippable(err) {
			log.Info("engine ran out of resources, skipping", "error", err)

			return Result{}, Skipped, err
		}

		log.Warn("measurement aborted", "error", err)

		return Result{}, Aborted, err
	}

	r.transition(log, id, Aggregating)

	result := r.aggregate(engine, point, m)

	r.transition(log, id, Done)

	return result, Measured, nil
}

// totals accumulates a point's measurements across all iterations.
type totals struct {
	elapsed  time.Duration
	joules   float64
	watts    float64
	verified bool
}

func (r *Runner) measure(log *slog.Logger, engine cipher.Engine, point Point, src []byte) (totals, error) {
	id := cipher.ID(engine)
	key, iv := r.keys.Key(), r.keys.IV()
	dst := make([]byte, len(src))

	if point.Warmup > 0 {
		r.transition(log, id, Warmup)

		for range point.Warmup {
			if err := engine.Encrypt(dst, src, key, iv); err != nil {
				return totals{}, fmt.Errorf("warming up %s: %w", id, err)
			}
		}
	}

	r.transition(log, id, Measuring)

	var check []byte
	if point.Verify {
		check = make([]byte, len(src))
	}

	sum := totals{verified: true}

	for iteration := range point.Iterations {
		var joules, watts float64

		for chunk := range point.Chunks {
			r.monitor.Start()
			start := time.Now()
			err := engine.Encrypt(dst, src, key, iv)
			elapsed := time.Since(start)
			reading := r.monitor.Stop()

			if err != nil {
				return totals{}, fmt.Errorf("encrypting %s (iteration %d, chunk %d): %w", id, iteration+1, chunk+1, err)
			}

			sum.elapsed += elapsed

			if reading.Valid {
				joules += reading.Joules
				watts += reading.Watts / float64(point.Chunks)
			}

			if chunk != 0 || !point.Verify {
				continue
			}

			if err := engine.Decrypt(check, dst, key, iv); err != nil {
				return totals{}, fmt.Errorf("decrypting %s (iteration %d): %w", id, iteration+1, err)
			}

			if !bytes.Equal(check, src) {
				sum.verified = false

				log.Warn("verification failed", "iteration", iteration+1, "error", ErrVerificationMismatch)
			}
		}

		sum.joules += joules
		sum.watts += watts
	}

	return sum, nil
}

func (r *Runner) aggregate(engine cipher.Engine, point Point, m totals) Result {
	iterations := float64(point.Iterations)
	mean := m.elapsed / time.Duration(point.Iterations)
	meanSec := m.elapsed.Seconds() / iterations

	speedup := 1.0

	if point.Baseline {
		if engine.Backend() == cipher.Sequential {
			r.baselines.Record(engine.Algorithm(), point.SizeMB, meanSec)
		}

		speedup = Speedup(r.baselines.Lookup(engine.Algorithm(), point.SizeMB), meanSec)
	}

	return Result{
		RunID:        r.runID,
		Platform:     r.platform,
		Algorithm:    engine.Algorithm(),
		Backend:      engine.Backend(),
		SizeMB:       point.SizeMB,
		BlockMB:      point.BlockMB,
		Threads:      max(1, point.Threads),
		Time:         mean,
		TimeSec:      meanSec,
		ThroughputMB: Throughput(point.SizeMB, meanSec),
		Speedup:      speedup,
		Efficiency:   Efficiency(speedup, point.Threads),
		Verified:     m.verified,
		EnergyJoules: m.joules / iterations,
		PowerWatts:   m.watts / iterations,
		EnergySource: r.monitor.Source(),
	}
}

func (r *Runner) transition(log *slog.Logger, id string, phase Phase) {
	log.Debug("phase", "phase", phase)

	if r.onPhase != nil {
		r.onPhase(id, phase)
	}
}
