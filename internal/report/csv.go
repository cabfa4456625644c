package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/idelchi/cipherbench/internal/bench"
)

// Header is the column layout of result rows.
//
//nolint:gochecknoglobals // fixed column layout
var Header = []string{
	"Platform", "Algorithm", "Engine", "FileSize_MB", "NumThreads", "Time_Sec", "Throughput_MBs",
	"Speedup", "Efficiency", "Verified", "Energy_Joules", "Power_Watts", "Energy_Source",
}

// CSV writes result rows with the header written exactly once per stream.
type CSV struct {
	w      *csv.Writer
	closer io.Closer
	header bool
}

// NewCSV writes to w. The caller owns w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

// CreateCSV truncates or creates path and writes the header.
func CreateCSV(path string) (*CSV, error) {
	file, err := os.Create(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("opening results file %q: %w", path, err)
	}

	out := NewCSV(file)
	out.closer = file

	if err := out.WriteHeader(); err != nil {
		file.Close() //nolint:errcheck,gosec // already failing

		return nil, err
	}

	return out, nil
}

// WriteHeader writes the header unless it was already written.
func (c *CSV) WriteHeader() error {
	if c.header {
		return nil
	}

	if err := c.w.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	c.header = true

	return nil
}

// Write appends one result row.
func (c *CSV) Write(r bench.Result) error {
	if err := c.WriteHeader(); err != nil {
		return err
	}

	if err := c.w.Write(Row(r)); err != nil {
		return fmt.Errorf("writing result row: %w", err)
	}

	return nil
}

// Flush pushes buffered rows to the underlying writer.
func (c *CSV) Flush() error {
	c.w.Flush()

	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flushing results: %w", err)
	}

	return nil
}

// Close flushes and, for files opened by CreateCSV, closes the file. Later calls only flush.
func (c *CSV) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}

	if c.closer == nil {
		return nil
	}

	closer := c.closer
	c.closer = nil

	if err := closer.Close(); err != nil {
		return fmt.Errorf("closing results file: %w", err)
	}

	return nil
}

// Row formats a result in Header order.
func Row(r bench.Result) []string {
	return []string{
		r.Platform,
		r.Algorithm,
		r.Backend,
		strconv.FormatFloat(r.ReportedSizeMB(), 'f', -1, 64),
		strconv.Itoa(r.Threads),
		strconv.FormatFloat(r.TimeSec, 'f', 6, 64),
		strconv.FormatFloat(r.ThroughputMB, 'f', 2, 64),
		strconv.FormatFloat(r.Speedup, 'f', 4, 64),
		strconv.FormatFloat(r.Efficiency, 'f', 4, 64),
		r.Status(),
		strconv.FormatFloat(r.EnergyJoules, 'f', 4, 64),
		strconv.FormatFloat(r.PowerWatts, 'f', 2, 64),
		r.EnergySource,
	}
}
