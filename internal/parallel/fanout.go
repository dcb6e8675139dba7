package parallel

import (
	"context"
	"sync"
)

// FanOut starts one goroutine per task index in [0, n), waits for all of
// them on a single barrier and returns the first error.
//
// Every task runs even when an earlier one fails; cancellation is left to
// the tasks themselves through ctx. There is no pool and no queue: the
// caller bounds concurrency by choosing n.
//
// Parameters:
//   - ctx: Passed unchanged to every task.
//   - n: The number of tasks. FanOut returns nil immediately when n <= 0.
//   - task: The work for index i.
//
// Returns:
//   - error: The first error reported by any task, or nil.
func FanOut(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	var (
		wg sync.WaitGroup
		ec ErrorCollector
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ec.SetError(task(ctx, i))
		}(i)
	}
	wg.Wait()
	return ec.Err()
}
