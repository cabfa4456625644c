package power

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	nvidiaSMI     = "nvidia-smi"
	sampleTimeout = 2 * time.Second
)

// ErrNoSample is returned when a power sample could not be parsed.
var ErrNoSample = errors.New("no power sample")

// Sampler returns the current board power draw in watts.
type Sampler func(ctx context.Context) (float64, error)

// NVIDIA samples board power through nvidia-smi at the start and end of a region
// and integrates their mean over the elapsed time.
type NVIDIA struct {
	sample    Sampler
	available bool
	start     float64
}

// NewNVIDIA creates a probe. Without a sampler it shells out to nvidia-smi when it is on PATH.
func NewNVIDIA(samplers ...Sampler) *NVIDIA {
	probe := &NVIDIA{}

	if len(samplers) > 0 && samplers[0] != nil {
		probe.sample = samplers[0]
	} else {
		if _, err := exec.LookPath(nvidiaSMI); err != nil {
			return probe
		}

		probe.sample = smiSample
	}

	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()

	watts, err := probe.sample(ctx)
	probe.available = err == nil && watts > 0

	return probe
}

func (*NVIDIA) Name() string { return SourceNVIDIA }

// Available reports whether a positive power sample was read at construction.
func (n *NVIDIA) Available() bool { return n.available }

// Begin samples the board power.
func (n *NVIDIA) Begin() error {
	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()

	watts, err := n.sample(ctx)
	if err != nil {
		return err
	}

	n.start = watts

	return nil
}

// End samples again and returns the mean of both samples over elapsed.
func (n *NVIDIA) End(elapsed time.Duration) (Reading, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()

	watts, err := n.sample(ctx)
	if err != nil {
		return Reading{}, err
	}

	const samples = 2

	return fromWatts((n.start+watts)/samples, elapsed), nil
}

func smiSample(ctx context.Context) (float64, error) {
	out, err := exec.CommandContext(ctx, nvidiaSMI,
		"--query-gpu=power.draw", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, fmt.Errorf("running %s: %w", nvidiaSMI, err)
	}

	return parseSMI(string(out))
}

// parseSMI sums the power draw of every GPU listed, one value per line.
func parseSMI(out string) (float64, error) {
	var (
		total float64
		found bool
	)

	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		watts, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNoSample, line)
		}

		total += watts
		found = true
	}

	if !found {
		return 0, ErrNoSample
	}

	return total, nil
}
