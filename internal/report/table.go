package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/cipherbench/internal/bench"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeRow(tw io.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

func writeSeparator(tw io.Writer, columns int) {
	sep := make([]string, columns)
	for i := range sep {
		sep[i] = "---"
	}

	writeRow(tw, sep...)
}

// SizeLabel renders a byte count as "64 KB" or "16 MB".
func SizeLabel(bytes int) string {
	if bytes < 1<<20 {
		return fmt.Sprintf("%d KB", bytes>>10)
	}

	if bytes%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", bytes>>20)
	}

	return humanize.IBytes(uint64(bytes)) //nolint:gosec // sizes are positive
}

//nolint:gochecknoglobals // fixed column layout
var resultColumns = []string{"Engine", "Size", "Threads", "Throughput", "Time", "Speedup", "Efficiency", "Power", "Status"}

// WriteResults renders results as an aligned table.
func WriteResults(w io.Writer, title string, results []bench.Result) {
	tw := newTabWriter(w)

	fmt.Fprintf(tw, "\n--- %s ---\n\n", title)
	writeRow(tw, resultColumns...)
	writeSeparator(tw, len(resultColumns))

	for _, r := range results {
		writeRow(tw, resultCells(r)...)
	}

	fmt.Fprintln(tw)
	tw.Flush() //nolint:errcheck,gosec // console output
}

func resultCells(r bench.Result) []string {
	size := fmt.Sprintf("%g MB", r.SizeMB)
	if r.BlockMB > 0 {
		size = SizeLabel(int(r.BlockMB * (1 << 20)))
	}

	return []string{
		r.ID(),
		size,
		fmt.Sprintf("%d", r.Threads),
		fmt.Sprintf("%.2f MB/s", r.ThroughputMB),
		fmt.Sprintf("%.4f s", r.TimeSec),
		fmt.Sprintf("%.2fx", r.Speedup),
		fmt.Sprintf("%.1f%%", r.Efficiency*100), //nolint:mnd // percent
		fmt.Sprintf("%.2f W", r.PowerWatts),
		r.Status(),
	}
}

// Progress prints one line per measured point as results arrive.
type Progress struct {
	w     io.Writer
	quiet bool
}

// NewProgress writes to w. A quiet printer stays silent.
func NewProgress(w io.Writer, quiet bool) *Progress {
	return &Progress{w: w, quiet: quiet}
}

// Section announces a new block of test points.
func (p *Progress) Section(format string, args ...any) {
	if p.quiet {
		return
	}

	fmt.Fprintf(p.w, "\n"+format+"\n", args...)
}

// Result prints a single result line.
func (p *Progress) Result(r bench.Result) {
	if p.quiet {
		return
	}

	fmt.Fprintf(p.w, "  %s\n", strings.Join(resultCells(r), " | "))
}

// Skip notes a point that did not produce a result.
func (p *Progress) Skip(id string, outcome bench.Outcome, err error) {
	if p.quiet {
		return
	}

	fmt.Fprintf(p.w, "  %s | %s: %v\n", id, outcome, err)
}

// WriteSummary renders the outcome counts of a run.
func WriteSummary(w io.Writer, s Summary) {
	tw := newTabWriter(w)

	fmt.Fprintf(tw, "\n--- Summary ---\n\n")
	writeRow(tw, "Points:", fmt.Sprintf("%d", s.Total))
	writeRow(tw, "Passed:", fmt.Sprintf("%d", s.Passed))
	writeRow(tw, "Failed:", fmt.Sprintf("%d", s.Failed))
	writeRow(tw, "Skipped:", fmt.Sprintf("%d", s.Skipped))
	writeRow(tw, "Aborted:", fmt.Sprintf("%d", s.Aborted))
	writeRow(tw, "Processed:", humanize.IBytes(s.Bytes))
	writeRow(tw, "Duration:", s.Duration.Round(time.Millisecond).String())

	tw.Flush() //nolint:errcheck,gosec // console output
}

// WriteEnvironment renders the host description and run settings before a run.
func WriteEnvironment(w io.Writer, meta Meta, settings [][2]string) {
	tw := newTabWriter(w)

	fmt.Fprintf(tw, "--- System ---\n\n")
	writeRow(tw, "Platform:", meta.Platform)
	writeRow(tw, "CPU cores:", fmt.Sprintf("%d", meta.Environment.NumCPU))
	writeRow(tw, "Go:", meta.Environment.GoVersion)
	writeRow(tw, "Power source:", meta.PowerSource)

	device := meta.Device
	if device == "" {
		device = "none"
	}

	writeRow(tw, "Compute device:", device)
	writeRow(tw, "Run:", meta.RunID)

	if len(settings) > 0 {
		fmt.Fprintf(tw, "\n--- Configuration ---\n\n")

		for _, kv := range settings {
			writeRow(tw, kv[0]+":", kv[1])
		}
	}

	tw.Flush() //nolint:errcheck,gosec // console output
}
