package pipeline

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"cloud.google.com/go/civil"

	"github.com/theirongolddev/runway/internal/store"
)

// OwnerResult is the outcome of refreshing one owner.
type OwnerResult struct {
	Owner  string
	Report *Report
	Err    error
}

// ProgressFunc is called as owners finish.
// current is the number of owners processed so far, total is the total count.
type ProgressFunc func(current, total int)

// RefreshAll refreshes owners in parallel with a bounded worker pool.
// workers <= 0 means GOMAXPROCS. Results keep the order of owners.
func RefreshAll(ctx context.Context, st *store.Store, owners []string, today civil.Date, workers int, progressFn ProgressFunc) []OwnerResult {
	results := make([]OwnerResult, len(owners))
	if len(owners) == 0 {
		return results
	}

	numWorkers := workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(owners) {
		numWorkers = len(owners)
	}

	work := make(chan int, len(owners))
	for i := range owners {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	var processed atomic.Int64

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				res := OwnerResult{Owner: owners[idx]}
				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Report, res.Err = RefreshOwner(ctx, st, owners[idx], today)
				}
				results[idx] = res

				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(owners))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
