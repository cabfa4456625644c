// Package engines is the catalogue of cipher engines, keyed by algorithm and backend.
package engines

import (
	"errors"
	"fmt"

	"github.com/idelchi/cipherbench/internal/cipher"
	"github.com/idelchi/cipherbench/internal/cipher/aesctr"
	"github.com/idelchi/cipherbench/internal/cipher/xorstream"
	"github.com/idelchi/cipherbench/internal/device"
)

// ErrUnknownEngine is returned when no engine is registered for an algorithm and backend.
var ErrUnknownEngine = errors.New("unknown engine")

// Options carries what a constructor may need.
type Options struct {
	// Threads is the worker count for thread-parallel backends.
	Threads int
	// Device is the compute device for kernel backends. Nil makes them unavailable.
	Device *device.Device
}

// Constructor builds a fresh engine.
type Constructor func(opts Options) cipher.Engine

// Entry is one registered engine.
type Entry struct {
	Algorithm string
	Backend   string
	New       Constructor
}

// ID returns the "ALGORITHM/Backend" identifier.
func (e Entry) ID() string {
	return e.Algorithm + "/" + e.Backend
}

// Threaded reports whether the backend's parallelism follows the thread count.
func (e Entry) Threaded() bool {
	return e.Backend == cipher.ThreadParallel
}

// Registry holds entries in registration order.
type Registry struct {
	entries []Entry
}

// Register adds an entry. A later entry with the same ID replaces the earlier one.
func (r *Registry) Register(algorithm, backend string, ctor Constructor) {
	entry := Entry{Algorithm: algorithm, Backend: backend, New: ctor}

	for i, existing := range r.entries {
		if existing.ID() == entry.ID() {
			r.entries[i] = entry

			return
		}
	}

	r.entries = append(r.entries, entry)
}

// Entries returns all entries in registration order.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Algorithms returns the distinct algorithms in registration order.
func (r *Registry) Algorithms() []string {
	var algorithms []string

	seen := make(map[string]bool)

	for _, entry := range r.entries {
		if !seen[entry.Algorithm] {
			seen[entry.Algorithm] = true
			algorithms = append(algorithms, entry.Algorithm)
		}
	}

	return algorithms
}

// Lookup finds the entry for an algorithm and backend.
func (r *Registry) Lookup(algorithm, backend string) (Entry, error) {
	for _, entry := range r.entries {
		if entry.Algorithm == algorithm && entry.Backend == backend {
			return entry, nil
		}
	}

	return Entry{}, fmt.Errorf("%w: %s/%s", ErrUnknownEngine, algorithm, backend)
}

// New constructs a fresh engine.
func (r *Registry) New(algorithm, backend string, opts Options) (cipher.Engine, error) {
	entry, err := r.Lookup(algorithm, backend)
	if err != nil {
		return nil, err
	}

	return entry.New(opts), nil
}

// Filter returns a registry holding only the entries whose ID satisfies keep.
func (r *Registry) Filter(keep func(id string) bool) *Registry {
	filtered := &Registry{}

	for _, entry := range r.entries {
		if keep(entry.ID()) {
			filtered.entries = append(filtered.entries, entry)
		}
	}

	return filtered
}

// Default returns every built-in engine: AES-256-CTR and XOR on each backend,
// plus the standard library AES as a reference.
func Default() *Registry {
	reg := &Registry{}

	reg.Register(cipher.AES256CTR, cipher.Sequential, func(Options) cipher.Engine {
		return aesctr.NewSequential()
	})
	reg.Register(cipher.AES256CTR, cipher.ThreadParallel, func(opts Options) cipher.Engine {
		return aesctr.NewParallel(opts.Threads)
	})
	reg.Register(cipher.AES256CTR, cipher.GPUKernel, func(opts Options) cipher.Engine {
		return aesctr.NewKernel(opts.Device)
	})
	reg.Register(cipher.AES256CTR, cipher.Native, func(Options) cipher.Engine {
		return aesctr.NewNative()
	})

	reg.Register(cipher.XOR, cipher.Sequential, func(Options) cipher.Engine {
		return xorstream.NewSequential()
	})
	reg.Register(cipher.XOR, cipher.ThreadParallel, func(opts Options) cipher.Engine {
		return xorstream.NewParallel(opts.Threads)
	})
	reg.Register(cipher.XOR, cipher.GPUKernel, func(opts Options) cipher.Engine {
		return xorstream.NewKernel(opts.Device)
	})

	return reg
}
