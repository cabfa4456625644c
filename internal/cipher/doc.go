// Package cipher defines the contract shared by every cipher engine in the benchmark.
//
// An engine pairs one algorithm with one execution backend:
//   - Sequential runs the transform on the calling goroutine
//   - ThreadParallel splits the buffer into chunks processed by a bounded worker group
//   - GPU-Kernel offloads the transform to a compute device, one work-item per cipher block
//
// All backends of an algorithm produce bit-identical output for identical key, IV and input.
package cipher
