// Package power brackets a measured region with an energy reading.
//
// Sources are probed in order and the first available one wins:
// Intel RAPL counters from sysfs, the NVIDIA SMI tool, then a CPU-utilisation model.
// When none is available readings carry the source "none" and are not valid.
package power

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Source labels.
const (
	SourceRAPL     = "Intel RAPL"
	SourceNVIDIA   = "NVIDIA SMI"
	SourceEstimate = "CPU Estimate"
	SourceNone     = "none"
)

// Reading is the energy spent between Start and Stop.
type Reading struct {
	Joules   float64
	Watts    float64
	Duration time.Duration
	Valid    bool
	Source   string
}

// Probe is one energy source.
type Probe interface {
	// Name is the source label reported in readings.
	Name() string
	// Available reports whether the source can be read on this host.
	Available() bool
	// Begin samples the source at the start of a region.
	Begin() error
	// End samples the source again and returns the energy spent over elapsed.
	End(elapsed time.Duration) (Reading, error)
}

// Monitor measures energy with the first available probe.
// It is not safe for concurrent use; one region is measured at a time.
type Monitor struct {
	probe   Probe
	started time.Time
	err     error
}

// NewMonitor picks the first available probe. With none available the monitor reports "none".
func NewMonitor(probes ...Probe) *Monitor {
	for _, probe := range probes {
		if probe != nil && probe.Available() {
			return &Monitor{probe: probe}
		}
	}

	return &Monitor{}
}

// Mode names accepted by Detect.
const (
	ModeAuto     = "auto"
	ModeRAPL     = "rapl"
	ModeNVIDIA   = "nvidia"
	ModeEstimate = "estimate"
	ModeNone     = "none"
)

// Detect builds a monitor for mode. Auto probes RAPL, NVIDIA SMI and the CPU model in that order;
// the other modes pin a single source and fall back to "none" when it is unavailable.
func Detect(mode string) (*Monitor, error) {
	var probes []Probe

	switch strings.ToLower(mode) {
	case ModeAuto, "":
		probes = []Probe{NewRAPL(), NewNVIDIA(), NewEstimate()}
	case ModeRAPL:
		probes = []Probe{NewRAPL()}
	case ModeNVIDIA:
		probes = []Probe{NewNVIDIA()}
	case ModeEstimate:
		probes = []Probe{NewEstimate()}
	case ModeNone:
	default:
		return nil, fmt.Errorf("unknown power mode %q", mode)
	}

	monitor := NewMonitor(probes...)

	slog.Debug("power source selected", "mode", mode, "source", monitor.Source())

	return monitor, nil
}

// Source returns the selected source label.
func (m *Monitor) Source() string {
	if m.probe == nil {
		return SourceNone
	}

	return m.probe.Name()
}

// Available reports whether a real source was found.
func (m *Monitor) Available() bool {
	return m.probe != nil
}

// Start marks the beginning of a region.
func (m *Monitor) Start() {
	m.started = time.Now()
	m.err = nil

	if m.probe != nil {
		m.err = m.probe.Begin()
	}
}

// Stop ends the region and returns its reading. Failed samples yield an invalid reading.
func (m *Monitor) Stop() Reading {
	elapsed := time.Since(m.started)
	invalid := Reading{Duration: elapsed, Source: m.Source()}

	if m.probe == nil {
		return invalid
	}

	if m.err != nil {
		slog.Debug("power sample failed", "source", m.Source(), "error", m.err)

		return invalid
	}

	reading, err := m.probe.End(elapsed)
	if err != nil {
		slog.Debug("power sample failed", "source", m.Source(), "error", err)

		return invalid
	}

	reading.Duration = elapsed
	reading.Source = m.Source()

	return reading
}

// fromJoules completes a reading from the energy spent over elapsed.
func fromJoules(joules float64, elapsed time.Duration) Reading {
	reading := Reading{Joules: joules, Valid: true}

	if seconds := elapsed.Seconds(); seconds > 0 {
		reading.Watts = joules / seconds
	}

	return reading
}

// fromWatts completes a reading from the mean power over elapsed.
func fromWatts(watts float64, elapsed time.Duration) Reading {
	return Reading{
		Joules: watts * elapsed.Seconds(),
		Watts:  watts,
		Valid:  watts > 0,
	}
}
