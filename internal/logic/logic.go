// Package logic drives a benchmark run: it builds the test points, runs them through the
// orchestrator, and persists and renders their results.
package logic

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/idelchi/cipherbench/internal/bench"
	"github.com/idelchi/cipherbench/internal/cipher"
	"github.com/idelchi/cipherbench/internal/config"
	"github.com/idelchi/cipherbench/internal/device"
	"github.com/idelchi/cipherbench/internal/engines"
	"github.com/idelchi/cipherbench/internal/fileutil"
	"github.com/idelchi/cipherbench/internal/power"
	"github.com/idelchi/cipherbench/internal/report"
)

// Run is the main logic of the application. Verification failures and skipped or aborted
// points do not make it fail; only setup errors do.
func Run(cfg *config.Config, version string) error {
	return RunWith(cfg, version, engines.Default(), os.Stdout)
}

// RunWith runs the benchmark over the engines of registry, writing console output to out.
func RunWith(cfg *config.Config, version string, registry *engines.Registry, out io.Writer) error {
	d, err := newDriver(cfg, version, registry, out)
	if err != nil {
		return err
	}

	defer d.close()

	if !cfg.Quiet {
		report.WriteEnvironment(out, d.meta, cfg.Settings())
	}

	if cfg.BlockSizeSweep {
		err = d.runSweep()
	} else {
		err = d.runSizes()
	}

	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	return d.finish()
}

// driver carries the state of one run.
type driver struct {
	cfg      *config.Config
	registry *engines.Registry
	dev      *device.Device
	runner   *bench.Runner
	csv      *report.CSV
	progress *report.Progress
	out      io.Writer
	meta     report.Meta
	seed     *[32]byte

	results []bench.Result
	summary report.Summary
	start   time.Time
}

func newDriver(cfg *config.Config, version string, registry *engines.Registry, out io.Writer) (*driver, error) {
	start := time.Now()

	keys, err := keyMaterial(cfg)
	if err != nil {
		return nil, err
	}

	selected, err := selectEngines(cfg, registry)
	if err != nil {
		return nil, err
	}

	if len(selected.Entries()) == 0 {
		return nil, errors.New("no engines selected")
	}

	dev, err := device.Open(device.Kind(cfg.Device))
	if err != nil {
		if !errors.Is(err, device.ErrUnavailable) {
			return nil, fmt.Errorf("opening compute device: %w", err)
		}

		slog.Info("kernel engines disabled", "reason", err)
	}

	monitor, err := power.Detect(cfg.Power)
	if err != nil {
		return nil, fmt.Errorf("detecting power source: %w", err)
	}

	platform := bench.Platform()
	runID := uuid.NewString()

	path := cfg.OutputPath(platform)

	csv, err := report.CreateCSV(path)
	if err != nil {
		return nil, err
	}

	slog.Debug("writing results", "path", path)

	meta := report.Meta{
		RunID:       runID,
		Version:     version,
		Timestamp:   start,
		Platform:    platform,
		PowerSource: monitor.Source(),
		KeyID:       keys.Fingerprint(),
		Environment: report.NewEnvironmentInfo(),
	}

	if dev != nil {
		meta.Device = dev.Name()
	}

	var seed *[32]byte
	if cfg.Seed != "" {
		sum := sha256.Sum256([]byte("cipherbench/data/" + cfg.Seed))
		seed = &sum
	}

	return &driver{
		cfg:      cfg,
		registry: selected,
		dev:      dev,
		runner:   bench.New(keys, monitor, bench.WithPlatform(platform), bench.WithRunID(runID)),
		csv:      csv,
		progress: report.NewProgress(out, cfg.Quiet),
		out:      out,
		meta:     meta,
		seed:     seed,
		start:    start,
	}, nil
}

// keyMaterial returns explicit, seeded or random key material, in that order of preference.
func keyMaterial(cfg *config.Config) (cipher.KeyMaterial, error) {
	switch {
	case cfg.Key != "":
		return cipher.ParseKeyMaterial(cfg.Key, cfg.IV)
	case cfg.Seed != "":
		return cipher.DeriveKeyMaterial(cfg.Seed)
	default:
		return cipher.NewKeyMaterial(), nil
	}
}

// runSizes measures every selected engine at every size. Per algorithm the sequential engine
// runs first so that the others can be compared against it.
func (d *driver) runSizes() error {
	sizes, err := d.cfg.SizesMB()
	if err != nil {
		return err
	}

	threadCounts := bench.ThreadCounts(d.cfg.Threads(), d.cfg.ThreadScalingEnabled())

	for _, sizeMB := range sizes {
		chunkBytes, chunks := bench.Chunking(sizeMB, bench.DefaultMaxChunkMB)

		d.progress.Section("Testing %d MB (%d chunk(s) of %s)", sizeMB, chunks, report.SizeLabel(chunkBytes))

		data, err := fileutil.RandomBuffer(chunkBytes, d.seed)
		if err != nil {
			return err
		}

		point := bench.Point{
			SizeMB:     float64(sizeMB),
			ChunkBytes: chunkBytes,
			Chunks:     chunks,
			Iterations: d.cfg.Iterations,
			Warmup:     d.cfg.Warmup,
			Verify:     d.cfg.VerifyEnabled(),
			Baseline:   true,
		}

		for _, entry := range baselineFirst(d.registry) {
			counts := []int{1}
			if entry.Threaded() {
				counts = threadCounts
			}

			for _, threads := range counts {
				if err := d.measure(entry, threads, point, data); err != nil {
					return err
				}
			}
		}

		if err := d.csv.Flush(); err != nil {
			return err
		}
	}

	return nil
}

// measure runs one test point and records its outcome.
func (d *driver) measure(entry engines.Entry, threads int, point bench.Point, data []byte) error {
	engine := entry.New(engines.Options{Threads: threads, Device: d.dev})
	point.Threads = threads

	result, outcome, err := d.runner.Run(engine, point, data)

	d.summary.Add(outcome, result, point.Iterations)

	if outcome != bench.Measured {
		d.progress.Skip(entry.ID(), outcome, err)

		return nil
	}

	d.results = append(d.results, result)
	d.progress.Result(result)

	return d.csv.Write(result)
}

// baselineFirst orders entries by algorithm with each algorithm's sequential engine first.
func baselineFirst(registry *engines.Registry) []engines.Entry {
	var ordered []engines.Entry

	entries := registry.Entries()

	for _, algorithm := range registry.Algorithms() {
		for _, entry := range entries {
			if entry.Algorithm == algorithm && entry.Backend == cipher.Sequential {
				ordered = append(ordered, entry)
			}
		}

		for _, entry := range entries {
			if entry.Algorithm == algorithm && entry.Backend != cipher.Sequential {
				ordered = append(ordered, entry)
			}
		}
	}

	return ordered
}

func (d *driver) finish() error {
	d.summary.Duration = time.Since(d.start)

	if err := d.csv.Close(); err != nil {
		return err
	}

	report.WriteResults(d.out, "Results", d.results)
	report.WriteSummary(d.out, d.summary)

	fmt.Fprintf(d.out, "\nResults saved to %s\n", d.cfg.OutputPath(d.meta.Platform)) //nolint:forbidigo

	if d.cfg.Report == "" {
		return nil
	}

	doc := &report.Report{
		Meta:    d.meta,
		Config:  redacted(*d.cfg),
		Results: d.results,
		Summary: d.summary,
	}

	if err := report.WriteJSON(doc, d.cfg.Report); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "Report saved to %s\n", d.cfg.Report) //nolint:forbidigo

	return nil
}

// redacted drops key material from a configuration before it is archived.
func redacted(cfg config.Config) config.Config {
	const mask = "<redacted>"

	for _, field := range []*string{&cfg.Key, &cfg.IV, &cfg.Seed} {
		if *field != "" {
			*field = mask
		}
	}

	return cfg
}

// close releases the results file if finish did not get to it.
func (d *driver) close() {
	if err := d.csv.Close(); err != nil {
		slog.Debug("closing results file", "error", err)
	}
}
