package aesctr

import (
	"encoding/binary"
	"fmt"

	"github.com/idelchi/cipherbench/internal/cipher"
	"github.com/idelchi/cipherbench/internal/device"
)

const kernelName = "aes256_ctr_encrypt"

// Kernel argument slots.
const (
	argInput = iota
	argOutput
	argRoundKeys
	argIVHigh
	argIVLow
	argLength
	kernelArgs
)

// Kernel offloads the transform to a compute device with one work-item per cipher block.
// Round keys are expanded on the host and uploaded once per transform.
type Kernel struct {
	base

	dev *device.Device
	ctx *device.Context

	kernel    *device.Kernel
	roundKeys *device.Buffer
	input     *device.Buffer
	output    *device.Buffer
}

// NewKernel creates a device-backed engine. A nil device yields an unavailable engine.
func NewKernel(dev *device.Device) *Kernel {
	return &Kernel{base: newBase(), dev: dev}
}

func (*Kernel) Backend() string { return cipher.GPUKernel }

// Available reports whether a compute device was found.
func (e *Kernel) Available() bool { return e.dev != nil }

// Initialize creates the device context and builds the kernel.
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

	kernel, err := ctx.CreateKernel(kernelName, kernelArgs, ctrKernel)
	if err != nil {
		ctx.Release()

		return fmt.Errorf("building kernel: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	roundKeys, err := ctx.Alloc(expandedKeySize)
	if err != nil {
		ctx.Release()

		return fmt.Errorf("allocating round keys: %w: %w", cipher.ErrResourceAcquisition, err)
	}

	e.ctx, e.kernel, e.roundKeys = ctx, kernel, roundKeys

	return nil
}

// Cleanup releases the context and everything allocated through it.
func (e *Kernel) Cleanup() error {
	if e.ctx == nil {
		return nil
	}

	e.ctx.Release()
	e.ctx, e.kernel, e.roundKeys, e.input, e.output = nil, nil, nil, nil, nil

	return nil
}

// Encrypt uploads src, runs the kernel over every block and downloads the result into dst.
func (e *Kernel) Encrypt(dst, src, key, iv []byte) error {
	iv, err := cipher.CheckArgs(dst, src, key, iv, e.defaultIV)
	if err != nil {
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

	if err := e.roundKeys.Write(expandKey(key)[:]); err != nil {
		return fmt.Errorf("uploading round keys: %w", err)
	}

	if err := e.input.Write(src); err != nil {
		return fmt.Errorf("uploading input: %w", err)
	}

	args := []any{
		argInput:     e.input,
		argOutput:    e.output,
		argRoundKeys: e.roundKeys,
		argIVHigh:    binary.BigEndian.Uint64(iv[:8]),
		argIVLow:     binary.BigEndian.Uint64(iv[8:]),
		argLength:    len(src),
	}

	for idx, arg := range args {
		if err := e.kernel.SetArg(idx, arg); err != nil {
			return fmt.Errorf("setting kernel argument: %w", err)
		}
	}

	blocks := (len(src) + BlockSize - 1) / BlockSize

	if err := e.ctx.Enqueue(e.kernel, blocks); err != nil {
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

// ensureCapacity grows the device buffers when a larger input arrives.
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

// ctrKernel encrypts the counter for block gid and XORs it into the block's bytes.
func ctrKernel(gid int, args []any) {
	//nolint:forcetypeassert // argument types are fixed by Encrypt
	var (
		input  = args[argInput].(*device.Buffer).Bytes()
		output = args[argOutput].(*device.Buffer).Bytes()
		keys   = args[argRoundKeys].(*device.Buffer).Bytes()
		high   = args[argIVHigh].(uint64)
		low    = args[argIVLow].(uint64)
		length = args[argLength].(int)
	)

	start := gid * BlockSize
	if start >= length {
		return
	}

	end := min(start+BlockSize, length)

	var ctr, keystream [BlockSize]byte

	counterAt(&ctr, high, low, uint64(gid))
	encryptBlock((*roundKeys)(keys[:expandedKeySize]), &keystream, &ctr)

	for i := start; i < end; i++ {
		output[i] = input[i] ^ keystream[i-start]
	}
}
