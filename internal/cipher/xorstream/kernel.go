package xorstream

import (
	"fmt"

	"github.com/idelchi/cipherbench/internal/cipher"
	"github.com/idelchi/cipherbench/internal/device"
)

const kernelName = "xor_encrypt"

const (
	argInput = iota
	argOutput
	argKey
	argLength
	kernelArgs
)

// lane is the number of bytes one work-item handles: one full repetition of the key.
const lane = cipher.KeySize

// Kernel offloads the transform to a compute device with one work-item per key-length lane.
type Kernel struct {
	base

	dev *device.Device
	ctx *device.Context

	kernel *device.Kernel
	key    *device.Buffer
	input  *device.Buffer
	output *device.Buffer
}

// NewKernel creates a device-backed XOR engine. A nil device yields an unavailable engine.
func NewKernel(dev *device.Device) *Kernel {
	return &Kernel{base: newBase(), dev: dev}
}

func (*Kernel) Backend() string { return cipher.GPUKernel }

// Available reports whether a compute device was found.
func (e *Kernel) Available() bool { return e.dev != nil }

// Initialize creates the device context, the kernel and the key buffer.
func (e *Kernel) Initialize() error {
	if e.ctx != nil {
		return nil
	}

	if e.dev == nil {
		return fmt.Errorf("%s: %w", kernelName, cipher.ErrBackendUnavailable)
	}

	ctx, err := e.dev.NewContext()
	if err != nil {
		return fmt.Errorf("creating device context: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	kernel, err := ctx.CreateKernel(kernelName, kernelArgs, xorKernel)
	if err != nil {
		ctx.Release()

		return fmt.Errorf("building kernel: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	key, err := ctx.Alloc(cipher.KeySize)
	if err != nil {
		ctx.Release()

		return fmt.Errorf("allocating key buffer: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	e.ctx, e.kernel, e.key = ctx, kernel, key

	return nil
}

// Cleanup releases the context and everything allocated through it.
func (e *Kernel) Cleanup() error {
	if e.ctx == nil {
		return nil
	}

	e.ctx.Release()
	e.ctx, e.kernel, e.key, e.input, e.output = nil, nil, nil, nil, nil

	return nil
}

// Encrypt implements cipher.Engine.
func (e *Kernel) Encrypt(dst, src, key, iv []byte) error {
	if err := e.check(dst, src, key, iv); err != nil {
		return err
	}

	if e.ctx == nil {
		return fmt.Errorf("%s: engine not initialized: %w", kernelName, cipher.ErrBackendUnavailable)
	}

	if len(src) == 0 {
		return nil
	}

	if err := e.ensureCapacity(len(src)); err != nil {
		return err
	}

	if err := e.key.Write(key); err != nil {
		return fmt.Errorf("uploading key: %w", err)
	}

	if err := e.input.Write(src); err != nil {
		return fmt.Errorf("uploading input: %w", err)
	}

	args := []any{
		argInput:  e.input,
		argOutput: e.output,
		argKey:    e.key,
		argLength: len(src),
	}

	for idx, arg := range args {
		if err := e.kernel.SetArg(idx, arg); err != nil {
			return fmt.Errorf("setting kernel argument: %w", err)
		}
	}

	if err := e.ctx.Enqueue(e.kernel, (len(src)+lane-1)/lane); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}

	if err := e.output.Read(dst[:len(src)]); err != nil {
		return fmt.Errorf("downloading output: %w", err)
	}

	return nil
}

// Decrypt implements cipher.Engine.
func (e *Kernel) Decrypt(dst, src, key, iv []byte) error {
	return e.Encrypt(dst, src, key, iv)
}

func (e *Kernel) ensureCapacity(size int) error {
	if e.input != nil && e.input.Len() >= size {
		return nil
	}

	if e.input != nil {
		e.input.Release()
		e.output.Release()
		e.input, e.output = nil, nil
	}

	input, err := e.ctx.Alloc(size)
	if err != nil {
		return fmt.Errorf("allocating input buffer: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	output, err := e.ctx.Alloc(size)
	if err != nil {
		input.Release()

		return fmt.Errorf("allocating output buffer: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	e.input, e.output = input, output

	return nil
}

func xorKernel(gid int, args []any) {
	//nolint:forcetypeassert // argument types are fixed by Encrypt
	var (
		input  = args[argInput].(*device.Buffer).Bytes()
		output = args[argOutput].(*device.Buffer).Bytes()
		key    = args[argKey].(*device.Buffer).Bytes()
		length = args[argLength].(int)
	)

	start := gid * lane
	if start >= length {
		return
	}

	end := min(start+lane, length)

	// start is a multiple of the key length, so the key phase restarts at zero.
	for i := start; i < end; i++ {
		output[i] = input[i] ^ key[i-start]
	}
}
