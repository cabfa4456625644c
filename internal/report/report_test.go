package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/cipherbench/internal/bench"
	"github.com/idelchi/cipherbench/internal/report"
)

func sample() bench.Result {
	return bench.Result{
		RunID:        "run",
		Platform:     "Linux",
		Algorithm:    "AES-256-CTR",
		Backend:      "ThreadParallel",
		SizeMB:       10,
		Threads:      4,
		TimeSec:      0.0123456789,
		ThroughputMB: 810.004,
		Speedup:      3.123456,
		Efficiency:   0.780864,
		Verified:     true,
		EnergyJoules: 0.123456,
		PowerWatts:   10.006,
		EnergySource: "Intel RAPL",
	}
}

func TestRow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"Linux", "AES-256-CTR", "ThreadParallel", "10", "4", "0.012346", "810.00",
		"3.1235", "0.7809", "PASS", "0.1235", "10.01", "Intel RAPL",
	}, report.Row(sample()))

	sweep := sample()
	sweep.SizeMB = 100
	sweep.BlockMB = 0.0625
	sweep.Verified = false

	row := report.Row(sweep)
	assert.Equal(t, "0.0625", row[3])
	assert.Equal(t, "FAIL", row[9])
}

func TestCSVWritesHeaderOnce(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	out := report.NewCSV(&buf)

	require.NoError(t, out.WriteHeader())
	require.NoError(t, out.Write(sample()))
	require.NoError(t, out.WriteHeader())
	require.NoError(t, out.Write(sample()))
	require.NoError(t, out.Close())
	require.NoError(t, out.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(report.Header, ","), lines[0])
	assert.Equal(t, lines[1], lines[2])
}

func TestCreateCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o600))

	out, err := report.CreateCSV(path)
	require.NoError(t, err)
	require.NoError(t, out.Write(sample()))
	require.NoError(t, out.Close())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "Platform,Algorithm,Engine,FileSize_MB,"))
	assert.NotContains(t, string(data), "stale")

	_, err = report.CreateCSV(filepath.Join(t.TempDir(), "missing", "results.csv"))
	require.Error(t, err)
}

func TestSummaryAdd(t *testing.T) {
	t.Parallel()

	var s report.Summary

	passed := sample()
	failed := sample()
	failed.Verified = false

	s.Add(bench.Measured, passed, 3)
	s.Add(bench.Measured, failed, 1)
	s.Add(bench.Skipped, bench.Result{}, 3)
	s.Add(bench.Aborted, bench.Result{}, 3)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Aborted)
	assert.Equal(t, uint64(40<<20), s.Bytes)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.json")

	in := &report.Report{
		Meta: report.Meta{
			RunID:       "run",
			Version:     "test",
			Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Platform:    "Linux",
			PowerSource: "none",
			KeyID:       "abcd1234",
			Environment: report.NewEnvironmentInfo(),
		},
		Results: []bench.Result{sample()},
		Summary: report.Summary{Total: 1, Passed: 1},
	}

	require.NoError(t, report.WriteJSON(in, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	meta := out["meta"].(map[string]any)
	assert.Equal(t, "abcd1234", meta["key_id"])

	results := out["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "ThreadParallel", results[0].(map[string]any)["engine"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not remain")
}

func TestConsoleOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	report.WriteResults(&buf, "Results", []bench.Result{sample()})
	assert.Contains(t, buf.String(), "AES-256-CTR/ThreadParallel")
	assert.Contains(t, buf.String(), "810.00 MB/s")

	buf.Reset()
	report.WriteSummary(&buf, report.Summary{Total: 2, Passed: 1, Skipped: 1, Bytes: 3 << 20})
	assert.Contains(t, buf.String(), "3.0 MiB")

	buf.Reset()
	progress := report.NewProgress(&buf, true)
	progress.Section("Size %d", 1)
	progress.Result(sample())
	progress.Skip("XOR/GPU-Kernel", bench.Skipped, errors.New("no device"))
	assert.Empty(t, buf.String())

	progress = report.NewProgress(&buf, false)
	progress.Skip("XOR/GPU-Kernel", bench.Skipped, errors.New("no device"))
	assert.Contains(t, buf.String(), "XOR/GPU-Kernel | skipped: no device")
}

func TestSizeLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "64 KB", report.SizeLabel(64<<10))
	assert.Equal(t, "16 MB", report.SizeLabel(16<<20))
	assert.Equal(t, "1.5 MiB", report.SizeLabel(3<<19))
}
