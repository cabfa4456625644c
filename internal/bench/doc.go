// Package bench runs one test point of the cipher benchmark and derives its metrics.
//
// A test point is one engine at one thread count over one logical data size. The runner
// initializes the engine, optionally warms it up, times every chunk of every iteration
// inside a power measurement, verifies the first chunk of each iteration by round trip,
// and averages the totals into a Result. Speedup is taken against the sequential
// engine of the same algorithm at the same size.
package bench
