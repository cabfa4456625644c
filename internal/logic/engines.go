package logic

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/idelchi/cipherbench/internal/config"
	"github.com/idelchi/cipherbench/internal/device"
	"github.com/idelchi/cipherbench/internal/engines"
	"github.com/idelchi/cipherbench/internal/filter"
	"github.com/idelchi/cipherbench/pkg/pathmatch"
)

// selectEngines narrows registry to the engines passing the include/exclude patterns.
func selectEngines(cfg *config.Config, registry *engines.Registry) (*engines.Registry, error) {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return nil, err
	}

	f, err := filter.New(includes, excludes)
	if err != nil {
		return nil, fmt.Errorf("filtering engines: %w", err)
	}

	return registry.Filter(f.Keep), nil
}

// loadPatterns merges CLI and file-based include/exclude patterns.
func loadPatterns(cfg *config.Config) (includes, excludes []string, err error) {
	includes = append(includes, cfg.Include...)
	excludes = append(excludes, cfg.Exclude...)

	files := []struct {
		path string
		list filter.List
	}{
		{cfg.IncludeFrom, filter.Includes},
		{cfg.ExcludeFrom, filter.Excludes},
	}

	for _, file := range files {
		if file.path == "" {
			continue
		}

		sel, err := filter.ReadSelection(file.path, file.list)
		if err != nil {
			return nil, nil, fmt.Errorf("loading patterns: %w", err)
		}

		includes = append(includes, sel.Include...)
		excludes = append(excludes, sel.Exclude...)
	}

	return includes, excludes, nil
}

// ListEngines prints every registered engine, whether it is selected and whether it can run here.
func ListEngines(cfg *config.Config, registry *engines.Registry, out io.Writer) error {
	selected, err := selectEngines(cfg, registry)
	if err != nil {
		return err
	}

	keep := make(map[string]bool)
	for _, entry := range selected.Entries() {
		keep[entry.ID()] = true
	}

	dev, err := device.Open(device.Kind(cfg.Device))
	if err != nil && !errors.Is(err, device.ErrUnavailable) {
		return fmt.Errorf("opening compute device: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join([]string{"Engine", "Selected", "Available"}, "\t"))
	fmt.Fprintln(tw, strings.Join([]string{"---", "---", "---"}, "\t"))

	for _, entry := range registry.Entries() {
		engine := entry.New(engines.Options{Threads: cfg.Threads(), Device: dev})

		fmt.Fprintln(tw, strings.Join([]string{entry.ID(), yesNo(keep[entry.ID()]), yesNo(engine.Available())}, "\t"))
	}

	if dev != nil {
		fmt.Fprintf(tw, "\nCompute device: %s\n", dev.Name())
	}

	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// RunCheck validates that every include/exclude pattern matches at least one registered engine.
func RunCheck(cfg *config.Config, registry *engines.Registry, out io.Writer) error {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return err
	}

	if len(includes) == 0 && len(excludes) == 0 {
		return errors.New("no include or exclude patterns to check")
	}

	ids := make([]string, 0, len(registry.Entries()))
	for _, entry := range registry.Entries() {
		ids = append(ids, entry.ID())
	}

	failures := checkPatterns(out, "include", includes, ids, cfg.Quiet)
	failures += checkPatterns(out, "exclude", excludes, ids, cfg.Quiet)

	if failures > 0 {
		return fmt.Errorf("%d pattern(s) matched no engines", failures)
	}

	return nil
}

// checkPatterns reports each pattern's matches and returns the number that matched nothing.
func checkPatterns(out io.Writer, kind string, patterns, ids []string, quiet bool) int {
	var failures int

	for _, pattern := range patterns {
		var matched []string

		for _, id := range ids {
			if ok, err := pathmatch.Match(pattern, id, pathmatch.IgnoreCase()); err == nil && ok {
				matched = append(matched, id)
			}
		}

		if len(matched) == 0 {
			failures++

			fmt.Fprintf(out, "%s pattern %q matches no engines\n", kind, pattern)

			continue
		}

		if !quiet {
			fmt.Fprintf(out, "%s pattern %q matches %s\n", kind, pattern, strings.Join(matched, ", "))
		}
	}

	return failures
}
