package commands

import (
	"errors"
	"os"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/spf13/cobra"

	"github.com/idelchi/cipherbench/internal/bench"
	"github.com/idelchi/cipherbench/internal/config"
	"github.com/idelchi/cipherbench/internal/logic"
)

// NewRootCommand creates the root command, which runs the benchmark.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version, dotEnv, planDefaults)

	root.Use = "cipherbench [flags]"
	root.Short = "Symmetric cipher benchmark"
	root.Long = `Measures throughput, speedup, efficiency and energy of AES-256-CTR and XOR
across sequential, thread-parallel and compute-kernel backends.

Every flag can also be set as CIPHERBENCH_<FLAG>, e.g. CIPHERBENCH_MAX_THREADS=8,
directly or through a .env file.`
	root.Args = cobra.NoArgs
	root.PersistentPreRunE = configure(root, cfg)
	root.RunE = func(_ *cobra.Command, _ []string) error {
		return logic.Run(cfg, version)
	}

	flags := root.PersistentFlags()

	flags.StringP("sizes", "s", "1,10,100", "Comma-separated data sizes in MB")
	flags.IntP("iterations", "n", bench.DefaultIterations, "Measured iterations per test point")
	flags.Int("warmup", bench.DefaultWarmup, "Untimed iterations before measuring")
	flags.Bool("verify", true, "Verify the first chunk of every iteration by decrypting it")
	flags.Bool("no-verify", false, "Disable verification")
	flags.Bool("thread-scaling", true, "Measure thread-parallel engines at powers of two up to --max-threads")
	flags.Bool("no-thread-scaling", false, "Measure thread-parallel engines at --max-threads only")
	flags.StringP("output", "o", "", "CSV results file (default <Platform>_results.csv, block_size_results.csv for sweeps)")
	flags.String("report", "", "Also write a JSON report of the run to this file")
	flags.Bool("block-size-sweep", false, "Measure every engine over a fixed total size at increasing block sizes")
	flags.Int("sweep-total", bench.DefaultSweepTotalMB, "Total size in MB per block-size sweep point")
	flags.String("block-sizes", "", "Comma-separated sweep block sizes, e.g. 64KiB,1MiB (default 64KiB..16MiB)")
	flags.String("plan", "", "YAML or JSONC plan file presetting these flags")
	flags.String("power", "auto", "Power source: auto, rapl, nvidia, estimate or none")
	flags.String("seed", "", "Derive key, IV and test data from this seed instead of at random")
	flags.String("key", "", "AES key, 32 bytes hex-encoded")
	flags.String("iv", "", "Initial counter, 16 bytes hex-encoded (requires --key)")

	addSelectionFlags(root)

	root.AddCommand(NewEnginesCommand(cfg), NewCheckCommand(cfg))

	return root
}

// addSelectionFlags declares the flags shared by every command.
func addSelectionFlags(root *cobra.Command) {
	flags := root.PersistentFlags()

	flags.StringSliceP("include", "i", nil, "Only engines matching these patterns, e.g. 'AES*' or '*/GPU-Kernel'")
	flags.StringSliceP("exclude", "e", nil, "Skip engines matching these patterns")
	flags.String("include-from", "", "JSONC file with an array of include patterns")
	flags.String("exclude-from", "", "JSONC file with an array of exclude patterns")
	flags.IntP("max-threads", "j", 0, "Maximum worker threads (default number of CPUs)")
	flags.String("device", "auto", "Compute device for kernel engines: auto, emulated or none")
	flags.BoolP("quiet", "q", false, "Suppress per-point output")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.Bool("show", false, "Show the configuration, with key material masked, and exit")
}

// Execute runs the command tree and returns the process exit code.
func Execute(version string) int {
	cfg := &config.Config{}

	err := NewRootCommand(cfg, version).Execute()

	switch {
	case err == nil, errors.Is(err, cobraext.ErrExitGracefully):
		return 0
	default:
		os.Stderr.WriteString("error: " + err.Error() + "\n") //nolint:errcheck,gosec // exiting anyway

		return 1
	}
}
