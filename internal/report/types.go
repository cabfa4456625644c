package report

import (
	"runtime"
	"time"

	"github.com/idelchi/cipherbench/internal/bench"
)

// Report is the JSON document of a whole run.
type Report struct {
	Meta    Meta           `json:"meta"`
	Config  any            `json:"config,omitempty"`
	Results []bench.Result `json:"results"`
	Summary Summary        `json:"summary"`
}

// Meta identifies a run.
type Meta struct {
	RunID       string          `json:"run_id"`
	Version     string          `json:"version"`
	Timestamp   time.Time       `json:"timestamp"`
	Platform    string          `json:"platform"`
	PowerSource string          `json:"power_source"`
	Device      string          `json:"device,omitempty"`
	KeyID       string          `json:"key_id"`
	Environment EnvironmentInfo `json:"environment"`
}

// EnvironmentInfo describes the host.
type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
}

// NewEnvironmentInfo reads the host description from the runtime.
func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
}

// Summary counts test points by outcome.
type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Aborted  int           `json:"aborted"`
	Bytes    uint64        `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
}

// Add counts one test point. Measured points add their processed volume.
func (s *Summary) Add(outcome bench.Outcome, r bench.Result, iterations int) {
	s.Total++

	switch outcome {
	case bench.Measured:
		if r.Verified {
			s.Passed++
		} else {
			s.Failed++
		}

		const bytesPerMB = 1 << 20

		s.Bytes += uint64(r.SizeMB*bytesPerMB) * uint64(max(iterations, 0)) //nolint:gosec // sizes are positive
	case bench.Skipped:
		s.Skipped++
	case bench.Aborted:
		s.Aborted++
	}
}
