package power

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultRAPLPaths are the package-0 energy counters, in lookup order.
//
//nolint:gochecknoglobals // read-only list of well-known sysfs locations
var DefaultRAPLPaths = []string{
	"/sys/class/powercap/intel-rapl/intel-rapl:0/energy_uj",
	"/sys/class/powercap/intel-rapl:0/energy_uj",
	"/sys/devices/virtual/powercap/intel-rapl/intel-rapl:0/energy_uj",
}

// raplWrapJoules is the counter range assumed when max_energy_range_uj is unreadable.
const raplWrapJoules = 16777.216

// RAPL reads the Intel Running Average Power Limit energy counter.
type RAPL struct {
	paths []string

	path        string
	wrap        float64
	startJoules float64
}

// NewRAPL creates a probe over DefaultRAPLPaths.
func NewRAPL(paths ...string) *RAPL {
	if len(paths) == 0 {
		paths = DefaultRAPLPaths
	}

	probe := &RAPL{paths: paths, wrap: raplWrapJoules}

	for _, path := range paths {
		if _, err := readMicrojoules(path); err == nil {
			probe.path = path

			break
		}
	}

	if probe.path != "" {
		rangePath := filepath.Join(filepath.Dir(probe.path), "max_energy_range_uj")
		if joules, err := readMicrojoules(rangePath); err == nil && joules > 0 {
			probe.wrap = joules
		}
	}

	return probe
}

func (*RAPL) Name() string { return SourceRAPL }

// Available reports whether a readable counter was found.
func (r *RAPL) Available() bool { return r.path != "" }

// Begin samples the counter.
func (r *RAPL) Begin() error {
	joules, err := readMicrojoules(r.path)
	if err != nil {
		return err
	}

	r.startJoules = joules

	return nil
}

// End samples the counter again. A counter that wrapped is corrected by one full range.
func (r *RAPL) End(elapsed time.Duration) (Reading, error) {
	joules, err := readMicrojoules(r.path)
	if err != nil {
		return Reading{}, err
	}

	spent := joules - r.startJoules
	if spent < 0 {
		spent += r.wrap
	}

	return fromJoules(spent, elapsed), nil
}

var errNoCounter = errors.New("no energy counter")

// readMicrojoules reads a sysfs microjoule counter and returns joules.
func readMicrojoules(path string) (float64, error) {
	if path == "" {
		return 0, errNoCounter
	}

	data, err := os.ReadFile(path) //nolint:gosec // fixed sysfs locations or test fixtures
	if err != nil {
		return 0, fmt.Errorf("reading %q: %w", path, err)
	}

	value, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", path, err)
	}

	const microjoulesPerJoule = 1e6

	return float64(value) / microjoulesPerJoule, nil
}
