package device

import (
	"fmt"
	"sync/atomic"
)

// Buffer is a region of device memory.
type Buffer struct {
	ctx      *Context
	data     []byte
	released atomic.Bool
}

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Write copies src from host memory into the start of the buffer.
func (b *Buffer) Write(src []byte) error {
	if b.released.Load() {
		return ErrReleased
	}

	if len(src) > len(b.data) {
		return fmt.Errorf("writing %d bytes into %d byte buffer: %w", len(src), len(b.data), ErrOutOfMemory)
	}

	copy(b.data, src)

	return nil
}

// Read copies the start of the buffer into dst in host memory.
func (b *Buffer) Read(dst []byte) error {
	if b.released.Load() {
		return ErrReleased
	}

	if len(dst) > len(b.data) {
		return fmt.Errorf("reading %d bytes from %d byte buffer: %w", len(dst), len(b.data), ErrOutOfMemory)
	}

	copy(dst, b.data)

	return nil
}

// Bytes exposes device memory to kernel bodies.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Release returns the buffer's memory to the device. It is idempotent.
func (b *Buffer) Release() {
	if b.ctx.forgetBuffer(b) {
		b.free()
	}
}

func (b *Buffer) free() {
	if b.released.Swap(true) {
		return
	}

	b.ctx.device.free(len(b.data))
	b.data = nil
}
