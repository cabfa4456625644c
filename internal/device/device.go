package device

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Kind selects how a device is opened.
type Kind string

const (
	// Auto opens the first available device.
	Auto Kind = "auto"
	// Emulated opens the host-backed device.
	Emulated Kind = "emulated"
	// None disables offload entirely.
	None Kind = "none"
)

const (
	// DefaultMemory is the device memory of the emulated device.
	DefaultMemory int64 = 4 << 30
	// DefaultWorkGroupSize is the number of work-items per work-group.
	DefaultWorkGroupSize = 256
	// EnvDisable names the environment variable that hides all devices when set to a true value.
	EnvDisable = "CIPHERBENCH_NO_DEVICE"
)

// Stats is a snapshot of a device's live resources.
type Stats struct {
	Contexts int
	Buffers  int
	Kernels  int
	Bytes    int64
}

// Device is one compute device. It is safe for concurrent use.
type Device struct {
	name          string
	computeUnits  int
	workGroupSize int
	memory        int64

	mu    sync.Mutex
	stats Stats
}

// Option configures a Device.
type Option func(*Device)

// WithComputeUnits sets the number of work-groups executed concurrently.
func WithComputeUnits(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.computeUnits = n
		}
	}
}

// WithMemory sets the device memory in bytes.
func WithMemory(bytes int64) Option {
	return func(d *Device) {
		if bytes > 0 {
			d.memory = bytes
		}
	}
}

// WithWorkGroupSize sets the number of work-items per work-group.
func WithWorkGroupSize(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.workGroupSize = n
		}
	}
}

// NewEmulated creates a host-backed device.
func NewEmulated(opts ...Option) *Device {
	dev := &Device{
		computeUnits:  runtime.NumCPU(),
		workGroupSize: DefaultWorkGroupSize,
		memory:        DefaultMemory,
	}

	for _, opt := range opts {
		opt(dev)
	}

	dev.name = fmt.Sprintf("emulated (%d compute units)", dev.computeUnits)

	return dev
}

// Open returns a device of the requested kind.
// Auto honours EnvDisable and otherwise falls back to the emulated device.
func Open(kind Kind, opts ...Option) (*Device, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case None:
		return nil, fmt.Errorf("%w: disabled", ErrUnavailable)
	case Emulated:
		return NewEmulated(opts...), nil
	case Auto, "":
		if disabledByEnv() {
			return nil, fmt.Errorf("%w: disabled by %s", ErrUnavailable, EnvDisable)
		}

		return NewEmulated(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func disabledByEnv() bool {
	switch strings.ToLower(os.Getenv(EnvDisable)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// Name describes the device.
func (d *Device) Name() string {
	return d.name
}

// ComputeUnits returns the number of concurrently executing work-groups.
func (d *Device) ComputeUnits() int {
	return d.computeUnits
}

// Stats returns the device's live resources.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stats
}

// NewContext creates a context that owns buffers and kernels on the device.
func (d *Device) NewContext() (*Context, error) {
	d.track(1, 0)

	return &Context{
		device:  d,
		buffers: make(map[*Buffer]struct{}),
		kernels: make(map[*Kernel]struct{}),
	}, nil
}

func (d *Device) reserve(size int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stats.Bytes+int64(size) > d.memory {
		return fmt.Errorf("%w: requested %d bytes, %d of %d in use", ErrOutOfMemory, size, d.stats.Bytes, d.memory)
	}

	d.stats.Bytes += int64(size)
	d.stats.Buffers++

	return nil
}

func (d *Device) free(size int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Bytes -= int64(size)
	d.stats.Buffers--
}

func (d *Device) track(contexts, kernels int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Contexts += contexts
	d.stats.Kernels += kernels
}
