package power

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCounter(t *testing.T, path string, microjoules uint64) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(strconv.FormatUint(microjoules, 10)+"\n"), 0o600))
}

func TestRAPL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	counter := filepath.Join(dir, "energy_uj")

	writeCounter(t, counter, 1_000_000)

	probe := NewRAPL(filepath.Join(dir, "missing"), counter)
	require.True(t, probe.Available())
	assert.Equal(t, SourceRAPL, probe.Name())

	require.NoError(t, probe.Begin())
	writeCounter(t, counter, 3_000_000)

	reading, err := probe.End(2 * time.Second)
	require.NoError(t, err)

	assert.True(t, reading.Valid)
	assert.InDelta(t, 2.0, reading.Joules, 1e-9)
	assert.InDelta(t, 1.0, reading.Watts, 1e-9)
}

func TestRAPLWraparound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	counter := filepath.Join(dir, "energy_uj")

	writeCounter(t, counter, 9_000_000)
	writeCounter(t, filepath.Join(dir, "max_energy_range_uj"), 10_000_000)

	probe := NewRAPL(counter)
	require.NoError(t, probe.Begin())

	writeCounter(t, counter, 1_000_000)

	reading, err := probe.End(time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, reading.Joules, 1e-9)
}

func TestRAPLUnavailable(t *testing.T) {
	t.Parallel()

	probe := NewRAPL(filepath.Join(t.TempDir(), "energy_uj"))

	assert.False(t, probe.Available())
	require.Error(t, probe.Begin())
}

func TestParseSMI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{name: "single gpu", out: "42.50\n", want: 42.5},
		{name: "two gpus", out: "10.25\n 20.75 \n", want: 31},
		{name: "empty", out: "\n", wantErr: true},
		{name: "not supported", out: "[N/A]\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseSMI(tt.out)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoSample)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// sequence returns a sampler yielding values in order, repeating the last one.
func sequence(values ...float64) Sampler {
	idx := 0

	return func(context.Context) (float64, error) {
		v := values[min(idx, len(values)-1)]
		idx++

		return v, nil
	}
}

func TestNVIDIA(t *testing.T) {
	t.Parallel()

	probe := NewNVIDIA(sequence(50, 100, 200))
	require.True(t, probe.Available())
	assert.Equal(t, SourceNVIDIA, probe.Name())

	require.NoError(t, probe.Begin())

	reading, err := probe.End(2 * time.Second)
	require.NoError(t, err)

	assert.InDelta(t, 150.0, reading.Watts, 1e-9)
	assert.InDelta(t, 300.0, reading.Joules, 1e-9)

	zero := NewNVIDIA(sequence(0))
	assert.False(t, zero.Available())

	failing := NewNVIDIA(func(context.Context) (float64, error) { return 0, ErrNoSample })
	assert.False(t, failing.Available())
}

func TestModelWatts(t *testing.T) {
	t.Parallel()

	m := Model{Idle: 5, Max: 30, Gamma: 1}

	assert.InDelta(t, 5.0, m.Watts(0), 1e-9)
	assert.InDelta(t, 17.5, m.Watts(0.5), 1e-9)
	assert.InDelta(t, 30.0, m.Watts(1), 1e-9)
	assert.InDelta(t, 30.0, m.Watts(2), 1e-9, "clamped")
	assert.InDelta(t, 5.0, m.Watts(-1), 1e-9, "clamped")

	curved := Model{Idle: 0, Max: 100, Gamma: 2}
	assert.InDelta(t, 25.0, curved.Watts(0.5), 1e-9)
}

func TestEstimate(t *testing.T) {
	t.Parallel()

	samples := [][2]float64{{0, 0}, {100, 400}, {150, 500}}
	idx := 0

	times := func() (float64, float64, error) {
		s := samples[min(idx, len(samples)-1)]
		idx++

		return s[0], s[1], nil
	}

	probe := NewEstimateWith(Model{Idle: 10, Max: 20, Gamma: 1}, times)
	require.True(t, probe.Available())

	require.NoError(t, probe.Begin())

	reading, err := probe.End(4 * time.Second)
	require.NoError(t, err)

	// 50 busy out of 100 total seconds: half utilisation.
	assert.InDelta(t, 15.0, reading.Watts, 1e-9)
	assert.InDelta(t, 60.0, reading.Joules, 1e-9)
	assert.True(t, reading.Valid)
}

func TestEstimateUnavailable(t *testing.T) {
	t.Parallel()

	probe := NewEstimateWith(DefaultModel, func() (float64, float64, error) {
		return 0, 0, errors.New("no procfs")
	})

	assert.False(t, probe.Available())
}

type stubProbe struct {
	name      string
	available bool
	beginErr  error
	reading   Reading
}

func (s *stubProbe) Name() string    { return s.name }
func (s *stubProbe) Available() bool { return s.available }
func (s *stubProbe) Begin() error    { return s.beginErr }

func (s *stubProbe) End(time.Duration) (Reading, error) {
	return s.reading, nil
}

func TestMonitorPicksFirstAvailable(t *testing.T) {
	t.Parallel()

	first := &stubProbe{name: "a"}
	second := &stubProbe{name: "b", available: true, reading: Reading{Joules: 3, Watts: 1, Valid: true}}
	third := &stubProbe{name: "c", available: true}

	monitor := NewMonitor(nil, first, second, third)
	require.True(t, monitor.Available())
	assert.Equal(t, "b", monitor.Source())

	monitor.Start()
	reading := monitor.Stop()

	assert.True(t, reading.Valid)
	assert.Equal(t, "b", reading.Source)
	assert.InDelta(t, 3.0, reading.Joules, 1e-9)
}

func TestMonitorWithoutSource(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(&stubProbe{name: "a"})
	assert.False(t, monitor.Available())
	assert.Equal(t, SourceNone, monitor.Source())

	monitor.Start()
	reading := monitor.Stop()

	assert.False(t, reading.Valid)
	assert.Equal(t, SourceNone, reading.Source)
	assert.Zero(t, reading.Joules)
}

func TestMonitorFailedBegin(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(&stubProbe{
		name:      "a",
		available: true,
		beginErr:  errors.New("counter vanished"),
		reading:   Reading{Joules: 1, Valid: true},
	})

	monitor.Start()
	reading := monitor.Stop()

	assert.False(t, reading.Valid)
	assert.Equal(t, "a", reading.Source)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	monitor, err := Detect(ModeNone)
	require.NoError(t, err)
	assert.Equal(t, SourceNone, monitor.Source())

	_, err = Detect("wattmeter")
	require.Error(t, err)
}
