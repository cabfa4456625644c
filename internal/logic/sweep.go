package logic

import (
	"github.com/idelchi/cipherbench/internal/bench"
	"github.com/idelchi/cipherbench/internal/fileutil"
)

// runSweep measures every selected engine over a fixed logical size at each block size.
// Verification is off, threaded engines use the maximum thread count and no speedup is computed.
func (d *driver) runSweep() error {
	blockSizes, err := d.cfg.BlockSizeBytes()
	if err != nil {
		return err
	}

	if len(blockSizes) == 0 {
		blockSizes = bench.DefaultSweepBlockSizes
	}

	buffers := make(map[int][]byte, len(blockSizes))

	for _, block := range blockSizes {
		data, err := fileutil.RandomBuffer(block, d.seed)
		if err != nil {
			return err
		}

		buffers[block] = data
	}

	total := d.cfg.SweepTotal
	if total < 1 {
		total = bench.DefaultSweepTotalMB
	}

	const bytesPerMB = 1 << 20

	for _, entry := range d.registry.Entries() {
		d.progress.Section("Block size sweep: %s over %d MB", entry.ID(), total)

		threads := 1
		if entry.Threaded() {
			threads = d.cfg.Threads()
		}

		for _, block := range blockSizes {
			point := bench.Point{
				SizeMB:     float64(total),
				BlockMB:    float64(block) / bytesPerMB,
				ChunkBytes: block,
				Chunks:     bench.SweepChunking(total, block),
				Iterations: d.cfg.Iterations,
				Warmup:     d.cfg.Warmup,
			}

			if err := d.measure(entry, threads, point, buffers[block]); err != nil {
				return err
			}
		}

		if err := d.csv.Flush(); err != nil {
			return err
		}
	}

	return nil
}
