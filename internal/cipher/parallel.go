package cipher

import (
	"golang.org/x/sync/errgroup"
)

// ForEachChunk splits the byte range [0, n) into chunkSize pieces and calls fn on each,
// with at most threads calls in flight. Chunks are handed out in order as workers free up.
// The first error cancels nothing already running but is the one returned.
func ForEachChunk(n, chunkSize, threads int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}

	if chunkSize <= 0 {
		chunkSize = DefaultBlockSize
	}

	group := errgroup.Group{}
	group.SetLimit(Threads(threads))

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)

		group.Go(func() error {
			return fn(start, end)
		})
	}

	return group.Wait()
}
