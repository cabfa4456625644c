package device

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// KernelFunc is the body of a kernel, invoked once per work-item with its global id.
type KernelFunc func(gid int, args []any)

// Context owns the buffers and kernels created through it.
// Releasing the context releases everything it still owns.
type Context struct {
	device *Device

	mu       sync.Mutex
	buffers  map[*Buffer]struct{}
	kernels  map[*Kernel]struct{}
	released bool
}

// Device returns the device the context was created on.
func (c *Context) Device() *Device {
	return c.device
}

// Alloc reserves size bytes of device memory.
func (c *Context) Alloc(size int) (*Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, ErrReleased
	}

	if err := c.device.reserve(size); err != nil {
		return nil, err
	}

	buf := &Buffer{ctx: c, data: make([]byte, size)}
	c.buffers[buf] = struct{}{}

	return buf, nil
}

// CreateKernel builds a kernel from fn. Arguments are bound with SetArg before Enqueue.
func (c *Context) CreateKernel(name string, nargs int, fn KernelFunc) (*Kernel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, ErrReleased
	}

	kernel := &Kernel{
		ctx:  c,
		name: name,
		fn:   fn,
		args: make([]any, nargs),
		set:  make([]bool, nargs),
	}

	c.kernels[kernel] = struct{}{}
	c.device.track(0, 1)

	return kernel, nil
}

// Enqueue runs kernel over the index range [0, globalSize) and blocks until every work-item finished.
// Work-groups are spread over the device's compute units.
func (c *Context) Enqueue(kernel *Kernel, globalSize int) error {
	c.mu.Lock()
	released := c.released
	c.mu.Unlock()

	if released {
		return ErrReleased
	}

	args, err := kernel.snapshot()
	if err != nil {
		return err
	}

	if globalSize <= 0 {
		return nil
	}

	groupSize := c.device.workGroupSize

	group := errgroup.Group{}
	group.SetLimit(c.device.computeUnits)

	for first := 0; first < globalSize; first += groupSize {
		last := min(first+groupSize, globalSize)

		group.Go(func() error {
			for gid := first; gid < last; gid++ {
				kernel.fn(gid, args)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("running kernel %q: %w", kernel.name, err)
	}

	return nil
}

// Release frees every buffer and kernel still owned by the context. It is idempotent.
func (c *Context) Release() {
	c.mu.Lock()

	if c.released {
		c.mu.Unlock()

		return
	}

	c.released = true
	buffers := c.buffers
	kernels := c.kernels
	c.buffers = nil
	c.kernels = nil

	c.mu.Unlock()

	for buf := range buffers {
		buf.free()
	}

	for kernel := range kernels {
		kernel.free()
	}

	c.device.track(-1, 0)
}

func (c *Context) forgetBuffer(buf *Buffer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.buffers[buf]; !ok {
		return false
	}

	delete(c.buffers, buf)

	return true
}

func (c *Context) forgetKernel(kernel *Kernel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.kernels[kernel]; !ok {
		return false
	}

	delete(c.kernels, kernel)

	return true
}
