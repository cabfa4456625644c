package cipher

import (
	"fmt"
	"runtime"
)

const (
	// KeySize is the required key length in bytes.
	KeySize = 32
	// IVSize is the IV (initial counter) length in bytes.
	IVSize = 16
	// DefaultBlockSize is the preferred chunk size for engines without a better hint.
	DefaultBlockSize = 1 << 20
)

// Algorithm names.
const (
	AES256CTR = "AES-256-CTR"
	XOR       = "XOR"
)

// Backend names.
const (
	Sequential     = "Sequential"
	ThreadParallel = "ThreadParallel"
	GPUKernel      = "GPU-Kernel"
	Native         = "Native"
)

// Engine is one algorithm bound to one execution backend.
//
// Engines are constructed fresh for every test point, initialized before the first
// transform and cleaned up before they are dropped.
type Engine interface {
	// Algorithm returns the algorithm name, e.g. "AES-256-CTR".
	Algorithm() string
	// Backend returns the backend name, e.g. "ThreadParallel".
	Backend() string
	// Available reports whether the backend can run on this host. It never fails.
	Available() bool
	// Initialize acquires backend resources. Calling it again is a no-op.
	Initialize() error
	// Cleanup releases everything Initialize acquired. It is safe to call repeatedly.
	Cleanup() error
	// Encrypt transforms len(src) bytes of src into dst.
	// A nil iv selects the engine's default IV.
	Encrypt(dst, src, key, iv []byte) error
	// Decrypt is the inverse of Encrypt. For stream ciphers it is the same transform.
	Decrypt(dst, src, key, iv []byte) error
	// OptimalBlockSize is the preferred chunk size in bytes.
	OptimalBlockSize() int
}

// ID returns the "ALGORITHM/Backend" identifier used for selection and logging.
func ID(e Engine) string {
	return e.Algorithm() + "/" + e.Backend()
}

// CheckArgs validates the arguments of a transform and resolves the IV.
// A nil iv is replaced by fallback.
func CheckArgs(dst, src, key, iv, fallback []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), KeySize)
	}

	if iv == nil {
		iv = fallback
	}

	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIVLength, len(iv), IVSize)
	}

	if len(dst) < len(src) {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(dst), len(src))
	}

	return iv, nil
}

// Threads normalizes a requested worker count: values below 1 select runtime.NumCPU.
func Threads(n int) int {
	if n < 1 {
		return runtime.NumCPU()
	}

	return n
}
