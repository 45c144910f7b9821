// Package parallel splits row-indexed work across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// threshold is the row count below which fanning out costs more than it saves.
const threshold = 256

// Rows invokes fn over half-open [start, end) ranges that together cover
// [0, n). Small inputs run as a single sequential call; larger ones are
// chunked across runtime.NumCPU() goroutines. Rows returns after every
// chunk has finished, so fn may write to disjoint rows of a shared slice.
func Rows(n int, fn func(start, end int)) {
	if n == 0 {
		return
	}
	if n <= threshold {
		fn(0, n)
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
