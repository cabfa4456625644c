// Package config holds the benchmark configuration assembled from flags, environment and plan files.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidList is returned when a comma-separated list cannot be parsed.
var ErrInvalidList = errors.New("invalid list")

// Config is the complete run configuration.
type Config struct {
	// Data sizes, comma-separated megabytes, e.g. "1,10,100".
	Sizes      string `validate:"required"`
	Iterations int    `validate:"min=1"`
	Warmup     int    `validate:"min=0"`

	Verify          bool
	NoVerify        bool `mapstructure:"no-verify"`
	ThreadScaling   bool `mapstructure:"thread-scaling"`
	NoThreadScaling bool `mapstructure:"no-thread-scaling"`
	MaxThreads      int  `mapstructure:"max-threads" validate:"min=0"`

	// Block-size sweep.
	BlockSizeSweep bool   `mapstructure:"block-size-sweep"`
	SweepTotal     int    `mapstructure:"sweep-total" validate:"min=1"`
	BlockSizes     string `mapstructure:"block-sizes"`

	// Outputs.
	Output string
	Report string

	// Engine selection, find -path globs over "ALGORITHM/Backend".
	Include     []string
	Exclude     []string
	IncludeFrom string `mapstructure:"include-from"`
	ExcludeFrom string `mapstructure:"exclude-from"`

	Plan   string
	Device string `validate:"oneof=auto emulated none"`
	Power  string `validate:"oneof=auto rapl nvidia estimate none"`

	// Key material: random by default, derived from Seed, or given as hex.
	Seed string `mask:"fixed" validate:"exclusive=Key"`
	Key  string `mask:"fixed" validate:"omitempty,len=64,hexadecimal"` // 32 bytes
	IV   string `mask:"fixed" validate:"omitempty,len=32,hexadecimal"` // 16 bytes

	Quiet    bool
	LogLevel string `mapstructure:"log-level" validate:"oneof=debug info warn error"`

	// Show prints the configuration instead of running.
	Show bool
}

// Display reports whether the configuration should be printed instead of run.
func (c Config) Display() bool {
	return c.Show
}

// Validate validates config against its struct tags. For a Config, it also parses the lists
// and checks the settings that depend on each other.
func (Config) Validate(config any) error {
	validate := validator.New()

	if err := registerExclusive(validate); err != nil {
		return err
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	var c Config

	switch cfg := config.(type) {
	case Config:
		c = cfg
	case *Config:
		c = *cfg
	default:
		return nil
	}

	if _, err := c.SizesMB(); err != nil {
		return err
	}

	if _, err := c.BlockSizeBytes(); err != nil {
		return err
	}

	if c.IV != "" && c.Key == "" {
		return errors.New("validating configuration: iv requires key")
	}

	return nil
}

// VerifyEnabled reports whether round-trip verification is on.
func (c Config) VerifyEnabled() bool {
	return c.Verify && !c.NoVerify
}

// ThreadScalingEnabled reports whether the thread sweep is on.
func (c Config) ThreadScalingEnabled() bool {
	return c.ThreadScaling && !c.NoThreadScaling
}

// Threads returns the maximum thread count, defaulting to the number of CPUs.
func (c Config) Threads() int {
	if c.MaxThreads < 1 {
		return runtime.NumCPU()
	}

	return c.MaxThreads
}

// OutputPath returns the CSV path, defaulting by mode.
func (c Config) OutputPath(platform string) string {
	switch {
	case c.Output != "":
		return c.Output
	case c.BlockSizeSweep:
		return "block_size_results.csv"
	default:
		return platform + "_results.csv"
	}
}

// SizesMB parses Sizes into positive megabyte counts.
func (c Config) SizesMB() ([]int, error) {
	return ParseList(c.Sizes, func(field string) (int, error) {
		value, err := strconv.Atoi(field)
		if err != nil || value < 1 {
			return 0, fmt.Errorf("size %q: must be a positive number of megabytes", field)
		}

		return value, nil
	})
}

// BlockSizeBytes parses BlockSizes into byte counts. "64KiB" and "1MiB" are accepted;
// note that "KB" and "MB" are decimal units.
func (c Config) BlockSizeBytes() ([]int, error) {
	if strings.TrimSpace(c.BlockSizes) == "" {
		return nil, nil
	}

	return ParseList(c.BlockSizes, func(field string) (int, error) {
		value, err := humanize.ParseBytes(field)
		if err != nil {
			return 0, fmt.Errorf("block size %q: %w", field, err)
		}

		const maxBlock = 1 << 30
		if value == 0 || value > maxBlock {
			return 0, fmt.Errorf("block size %q: must be between 1 byte and 1 GiB", field)
		}

		return int(value), nil
	})
}

// ParseList splits a comma-separated list and parses each non-empty field.
func ParseList[T any](list string, parse func(string) (T, error)) ([]T, error) {
	var values []T

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		value, err := parse(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidList, err)
		}

		values = append(values, value)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrInvalidList, list)
	}

	return values, nil
}

// Settings lists the effective settings for display.
func (c Config) Settings() [][2]string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}

		return "off"
	}

	settings := [][2]string{
		{"Iterations", strconv.Itoa(c.Iterations)},
		{"Warmup", strconv.Itoa(c.Warmup)},
		{"Max threads", strconv.Itoa(c.Threads())},
		{"Verification", onOff(c.VerifyEnabled())},
	}

	if c.BlockSizeSweep {
		return append(settings,
			[2]string{"Mode", "block-size sweep"},
			[2]string{"Total size", fmt.Sprintf("%d MB", c.SweepTotal)},
		)
	}

	return append(settings,
		[2]string{"Sizes (MB)", c.Sizes},
		[2]string{"Thread scaling", onOff(c.ThreadScalingEnabled())},
	)
}
