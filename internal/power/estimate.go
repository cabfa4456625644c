package power

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// Model converts CPU utilisation into watts: Idle + (Max - Idle) * utilisation^Gamma.
type Model struct {
	Idle  float64
	Max   float64
	Gamma float64
}

// DefaultModel approximates a 30 W mobile package that idles at 5 W.
//
//nolint:gochecknoglobals // read-only default coefficients
var DefaultModel = Model{Idle: 5, Max: 30, Gamma: 1}

// Watts evaluates the model. Utilisation is clamped to [0, 1].
func (m Model) Watts(utilisation float64) float64 {
	utilisation = math.Max(0, math.Min(1, utilisation))

	gamma := m.Gamma
	if gamma <= 0 {
		gamma = 1
	}

	return m.Idle + (m.Max-m.Idle)*math.Pow(utilisation, gamma)
}

// CPUTimes returns aggregate busy and total CPU seconds since boot.
type CPUTimes func() (busy, total float64, err error)

var errNoCPUTimes = errors.New("no cpu times reported")

// Estimate derives power from CPU utilisation between Begin and End.
// It never reads hardware counters, so its readings are an approximation.
type Estimate struct {
	model Model
	times CPUTimes

	available bool
	busy      float64
	total     float64
}

// NewEstimate creates a probe using DefaultModel and gopsutil CPU times.
func NewEstimate() *Estimate {
	return NewEstimateWith(DefaultModel, systemTimes)
}

// NewEstimateWith creates a probe with a custom model and CPU time source.
func NewEstimateWith(model Model, times CPUTimes) *Estimate {
	probe := &Estimate{model: model, times: times}

	_, _, err := times()
	probe.available = err == nil

	return probe
}

func (*Estimate) Name() string { return SourceEstimate }

// Available reports whether CPU times could be read.
func (e *Estimate) Available() bool { return e.available }

// Begin samples CPU times.
func (e *Estimate) Begin() error {
	busy, total, err := e.times()
	if err != nil {
		return err
	}

	e.busy, e.total = busy, total

	return nil
}

// End samples CPU times again and applies the model to the utilisation in between.
func (e *Estimate) End(elapsed time.Duration) (Reading, error) {
	busy, total, err := e.times()
	if err != nil {
		return Reading{}, err
	}

	var utilisation float64
	if dt := total - e.total; dt > 0 {
		utilisation = (busy - e.busy) / dt
	}

	return fromWatts(e.model.Watts(utilisation), elapsed), nil
}

// systemTimes sums the per-state counters of all CPUs. Guest time is already part of user time.
func systemTimes() (float64, float64, error) {
	stats, err := cpu.Times(false)
	if err != nil {
		return 0, 0, fmt.Errorf("reading cpu times: %w", err)
	}

	if len(stats) == 0 {
		return 0, 0, errNoCPUTimes
	}

	s := stats[0]
	idle := s.Idle + s.Iowait
	busy := s.User + s.System + s.Nice + s.Irq + s.Softirq + s.Steal

	return busy, busy + idle, nil
}
