// Package xorstream implements a repeating-key XOR transform and its engines.
//
// XOR is not a cipher in any meaningful sense. It marks the memory-bandwidth ceiling
// the AES engines are measured against.
package xorstream

import (
	"github.com/idelchi/cipherbench/internal/cipher"
)

// XORKeyAt writes src[i] ^ key[(offset+i) % len(key)] to dst for every byte of src.
// dst must be at least as long as src and key must not be empty.
func XORKeyAt(dst, src, key []byte, offset uint64) {
	keyLen := uint64(len(key))
	phase := int(offset % keyLen)

	for i := range src {
		dst[i] = src[i] ^ key[phase]

		phase++
		if phase == len(key) {
			phase = 0
		}
	}
}

type base struct {
	defaultIV []byte
}

func newBase() base {
	return base{defaultIV: cipher.RandomIV()}
}

func (base) Algorithm() string     { return cipher.XOR }
func (base) OptimalBlockSize() int { return cipher.DefaultBlockSize }

// check validates the arguments. The IV is validated for contract parity but not used.
func (b base) check(dst, src, key, iv []byte) error {
	_, err := cipher.CheckArgs(dst, src, key, iv, b.defaultIV)

	return err
}

// Sequential transforms the whole buffer on the calling goroutine.
type Sequential struct {
	base
}

// NewSequential creates a single-threaded XOR engine.
func NewSequential() *Sequential {
	return &Sequential{base: newBase()}
}

func (*Sequential) Backend() string   { return cipher.Sequential }
func (*Sequential) Available() bool   { return true }
func (*Sequential) Initialize() error { return nil }
func (*Sequential) Cleanup() error    { return nil }

// Encrypt implements cipher.Engine.
func (e *Sequential) Encrypt(dst, src, key, iv []byte) error {
	if err := e.check(dst, src, key, iv); err != nil {
		return err
	}

	XORKeyAt(dst, src, key, 0)

	return nil
}

// Decrypt implements cipher.Engine.
func (e *Sequential) Decrypt(dst, src, key, iv []byte) error {
	return e.Encrypt(dst, src, key, iv)
}

// Parallel splits the buffer into fixed chunks processed by a bounded group of goroutines.
type Parallel struct {
	base

	threads   int
	chunkSize int
}

// NewParallel creates a thread-parallel XOR engine. threads < 1 selects runtime.NumCPU.
func NewParallel(threads int) *Parallel {
	return &Parallel{
		base:      newBase(),
		threads:   cipher.Threads(threads),
		chunkSize: cipher.DefaultBlockSize,
	}
}

func (*Parallel) Backend() string   { return cipher.ThreadParallel }
func (*Parallel) Available() bool   { return true }
func (*Parallel) Initialize() error { return nil }
func (*Parallel) Cleanup() error    { return nil }

// Threads returns the worker count.
func (e *Parallel) Threads() int { return e.threads }

// Encrypt implements cipher.Engine.
func (e *Parallel) Encrypt(dst, src, key, iv []byte) error {
	if err := e.check(dst, src, key, iv); err != nil {
		return err
	}

	return cipher.ForEachChunk(len(src), e.chunkSize, e.threads, func(start, end int) error {
		XORKeyAt(dst[start:end], src[start:end], key, uint64(start))

		return nil
	})
}

// Decrypt implements cipher.Engine.
func (e *Parallel) Decrypt(dst, src, key, iv []byte) error {
	return e.Encrypt(dst, src, key, iv)
}
