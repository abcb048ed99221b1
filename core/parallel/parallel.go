// Package parallel splits row ranges across CPU cores.
//
// Callers must only write to indices inside the [start, end) range they are
// handed, which keeps the results identical to a sequential loop.
package parallel

import (
	"runtime"
	"sync"
)

// RowThreshold is the row count below which work stays on the calling goroutine.
const RowThreshold = 1000

// Parallelize divides items according to the number of CPU cores and runs fn
// for each contiguous range [start, end) concurrently.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items
// does not exceed threshold, otherwise delegates to Parallelize.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// Rows is ParallelizeWithThreshold with RowThreshold.
func Rows(n int, fn func(start, end int)) {
	ParallelizeWithThreshold(n, RowThreshold, fn)
}
