package bench

import (
	"fmt"
	"time"
)

// Result is the aggregated measurement of one test point.
type Result struct {
	RunID     string  `json:"run_id"`
	Platform  string  `json:"platform"`
	Algorithm string  `json:"algorithm"`
	Backend   string  `json:"engine"`
	SizeMB    float64 `json:"file_size_mb"`
	// BlockMB is the per-call block size of a block-size sweep point, zero otherwise.
	BlockMB      float64       `json:"block_size_mb,omitempty"`
	Threads      int           `json:"num_threads"`
	Time         time.Duration `json:"-"`
	TimeSec      float64       `json:"time_sec"`
	ThroughputMB float64       `json:"throughput_mbs"`
	Speedup      float64       `json:"speedup"`
	Efficiency   float64       `json:"efficiency"`
	Verified     bool          `json:"verified"`
	EnergyJoules float64       `json:"energy_joules"`
	PowerWatts   float64       `json:"power_watts"`
	EnergySource string        `json:"energy_source"`
}

// ID returns the "ALGORITHM/Backend" identifier of the measured engine.
func (r Result) ID() string {
	return r.Algorithm + "/" + r.Backend
}

// Status returns "PASS" or "FAIL".
func (r Result) Status() string {
	if r.Verified {
		return "PASS"
	}

	return "FAIL"
}

// ReportedSizeMB is the size column of a result row: the block size for sweep points,
// the logical data size otherwise.
func (r Result) ReportedSizeMB() float64 {
	if r.BlockMB > 0 {
		return r.BlockMB
	}

	return r.SizeMB
}

func (r Result) String() string {
	return fmt.Sprintf("%s %gMB x%d: %.2f MB/s (%s)", r.ID(), r.ReportedSizeMB(), r.Threads, r.ThroughputMB, r.Status())
}

// Throughput returns megabytes per second. A non-positive time yields zero.
func Throughput(sizeMB, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}

	return sizeMB / seconds
}

// Speedup returns baseline/mean. Without a baseline the speedup is 1.
func Speedup(baselineSec, meanSec float64) float64 {
	if baselineSec <= 0 || meanSec <= 0 {
		return 1
	}

	return baselineSec / meanSec
}

// Efficiency returns speedup per thread.
func Efficiency(speedup float64, threads int) float64 {
	if threads < 1 {
		threads = 1
	}

	return speedup / float64(threads)
}
