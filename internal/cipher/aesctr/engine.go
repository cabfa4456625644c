package aesctr

import (
	stdaes "crypto/aes"
	stdcipher "crypto/cipher"
	"fmt"

	"github.com/idelchi/cipherbench/internal/cipher"
)

// base carries what every AES engine shares: identity and the per-instance default IV.
type base struct {
	defaultIV []byte
}

func newBase() base {
	return base{defaultIV: cipher.RandomIV()}
}

func (base) Algorithm() string     { return cipher.AES256CTR }
func (base) OptimalBlockSize() int { return cipher.DefaultBlockSize }

// stream validates the arguments and builds the keystream for one transform.
func (b base) stream(dst, src, key, iv []byte) (*Stream, error) {
	iv, err := cipher.CheckArgs(dst, src, key, iv, b.defaultIV)
	if err != nil {
		return nil, err
	}

	return NewStream(key, iv)
}

// Sequential transforms the whole buffer on the calling goroutine.
type Sequential struct {
	base
}

// NewSequential creates a single-threaded AES-256-CTR engine.
func NewSequential() *Sequential {
	return &Sequential{base: newBase()}
}

func (*Sequential) Backend() string   { return cipher.Sequential }
func (*Sequential) Available() bool   { return true }
func (*Sequential) Initialize() error { return nil }
func (*Sequential) Cleanup() error    { return nil }

// Encrypt implements cipher.Engine.
func (e *Sequential) Encrypt(dst, src, key, iv []byte) error {
	stream, err := e.stream(dst, src, key, iv)
	if err != nil {
		return err
	}

	stream.XORKeyStream(dst, src)

	return nil
}

// Decrypt implements cipher.Engine.
func (e *Sequential) Decrypt(dst, src, key, iv []byte) error {
	return e.Encrypt(dst, src, key, iv)
}

// Parallel splits the buffer into fixed chunks processed by a bounded group of goroutines.
// Each chunk derives its own counter from its offset; the round keys are shared read-only.
type Parallel struct {
	base

	threads   int
	chunkSize int
}

// NewParallel creates a thread-parallel engine with the given worker count.
// threads < 1 selects runtime.NumCPU.
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
	stream, err := e.stream(dst, src, key, iv)
	if err != nil {
		return err
	}

	return cipher.ForEachChunk(len(src), e.chunkSize, e.threads, func(start, end int) error {
		stream.XORKeyStreamAt(dst[start:end], src[start:end], uint64(start))

		return nil
	})
}

// Decrypt implements cipher.Engine.
func (e *Parallel) Decrypt(dst, src, key, iv []byte) error {
	return e.Encrypt(dst, src, key, iv)
}

// Native uses the platform AES implementation from the standard library.
// It serves as the hardware-accelerated reference point.
type Native struct {
	base
}

// NewNative creates an engine backed by crypto/aes.
func NewNative() *Native {
	return &Native{base: newBase()}
}

func (*Native) Backend() string   { return cipher.Native }
func (*Native) Available() bool   { return true }
func (*Native) Initialize() error { return nil }
func (*Native) Cleanup() error    { return nil }

// Encrypt implements cipher.Engine.
func (e *Native) Encrypt(dst, src, key, iv []byte) error {
	iv, err := cipher.CheckArgs(dst, src, key, iv, e.defaultIV)
	if err != nil {
		return err
	}

	block, err := stdaes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("creating cipher: %w", err)
	}

	stdcipher.NewCTR(block, iv).XORKeyStream(dst[:len(src)], src)

	return nil
}

// Decrypt implements cipher.Engine.
func (e *Native) Decrypt(dst, src, key, iv []byte) error {
	return e.Encrypt(dst, src, key, iv)
}
