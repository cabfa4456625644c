package device

import (
	"fmt"
	"sync"
)

// Kernel is a compiled entry point with bound arguments.
type Kernel struct {
	ctx  *Context
	name string
	fn   KernelFunc

	mu       sync.Mutex
	args     []any
	set      []bool
	released bool
}

// Name returns the kernel's entry point name.
func (k *Kernel) Name() string {
	return k.name
}

// SetArg binds argument idx. Arguments keep their value across launches.
func (k *Kernel) SetArg(idx int, value any) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.released {
		return ErrReleased
	}

	if idx < 0 || idx >= len(k.args) {
		return fmt.Errorf("kernel %q: argument index %d out of range [0,%d)", k.name, idx, len(k.args))
	}

	k.args[idx] = value
	k.set[idx] = true

	return nil
}

// Release frees the kernel. It is idempotent.
func (k *Kernel) Release() {
	if k.ctx.forgetKernel(k) {
		k.free()
	}
}

func (k *Kernel) free() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.released {
		return
	}

	k.released = true
	k.ctx.device.track(0, -1)
}

func (k *Kernel) snapshot() ([]any, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.released {
		return nil, ErrReleased
	}

	for idx, ok := range k.set {
		if !ok {
			return nil, fmt.Errorf("kernel %q: %w: %d", k.name, ErrMissingArg, idx)
		}
	}

	return append([]any(nil), k.args...), nil
}
