package bench

// DefaultSizesMB are the logical data sizes measured when none are given.
//
//nolint:gochecknoglobals // read-only defaults
var DefaultSizesMB = []int{1, 10, 100}

// DefaultSweepBlockSizes are the block sizes of the block-size sweep, 64 KiB to 16 MiB.
//
//nolint:gochecknoglobals // read-only defaults
var DefaultSweepBlockSizes = []int{
	64 << 10, 128 << 10, 256 << 10, 512 << 10,
	1 << 20, 2 << 20, 4 << 20, 8 << 20, 16 << 20,
}

const (
	// DefaultIterations is the number of measured passes per test point.
	DefaultIterations = 3
	// DefaultWarmup is the number of untimed passes before measuring.
	DefaultWarmup = 0
	// DefaultMaxChunkMB caps the buffer transformed by a single call.
	DefaultMaxChunkMB = 512
	// DefaultSweepTotalMB is the logical size of every block-size sweep point.
	DefaultSweepTotalMB = 100

	bytesPerMB = 1 << 20
)

// Chunking splits a logical size into equal chunks of at most maxChunkMB.
// The last chunk is not shortened: every chunk transforms the same buffer.
func Chunking(sizeMB, maxChunkMB int) (chunkBytes, chunks int) {
	if maxChunkMB <= 0 {
		maxChunkMB = DefaultMaxChunkMB
	}

	chunkMB := min(sizeMB, maxChunkMB)
	if chunkMB <= 0 {
		return 0, 0
	}

	return chunkMB * bytesPerMB, (sizeMB + chunkMB - 1) / chunkMB
}

// SweepChunking splits totalMB into chunks of blockBytes. At least one chunk is measured.
func SweepChunking(totalMB, blockBytes int) int {
	if blockBytes <= 0 {
		return 0
	}

	return max(1, totalMB*bytesPerMB/blockBytes)
}

// ThreadCounts returns the thread counts to measure: powers of two up to maxThreads plus
// maxThreads itself, or only maxThreads when scaling is off.
func ThreadCounts(maxThreads int, scaling bool) []int {
	if maxThreads < 1 {
		maxThreads = 1
	}

	if !scaling {
		return []int{maxThreads}
	}

	var counts []int

	for threads := 1; threads <= maxThreads; threads *= 2 {
		counts = append(counts, threads)
	}

	if counts[len(counts)-1] != maxThreads {
		counts = append(counts, maxThreads)
	}

	return counts
}
