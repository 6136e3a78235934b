// Package bulk fans endpoint calls out across a bounded worker pool and
// merges the outcomes back in input order, tolerating per-key failures.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

// DefaultWorkers bounds in-flight requests when the caller does not choose.
const DefaultWorkers = 16

// Task produces the payload for one key.
type Task[K any] func(ctx context.Context, key K) (viaggiatreno.Result, error)

// Outcome is the terminal state of one key's task.
type Outcome[K any] struct {
	Key    K
	Result viaggiatreno.Result
	Err    error
}

// Empty reports whether the task succeeded but the payload carried no data.
func (o Outcome[K]) Empty() bool {
	return o.Err == nil && o.Result.Empty()
}

// Run executes task for every key with at most workers in flight and
// returns one outcome per key, in key order regardless of completion order.
// A failed key never aborts the batch.
func Run[K any](ctx context.Context, keys []K, workers int, task Task[K]) []Outcome[K] {
	outcomes := make([]Outcome[K], len(keys))
	if len(keys) == 0 {
		return outcomes
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := task(ctx, keys[i])
				outcomes[i] = Outcome[K]{Key: keys[i], Result: res, Err: err}
			}
		}()
	}
	for i := range keys {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// Summary counts one batch's outcomes.
type Summary struct {
	Data   int
	Empty  int
	Failed int
}

// Summarize tallies outcomes into data, empty and failed buckets.
func Summarize[K any](outcomes []Outcome[K]) Summary {
	var s Summary
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Result.Empty():
			s.Empty++
		default:
			s.Data++
		}
	}
	return s
}

// Total is the number of keys the batch covered.
func (s Summary) Total() int { return s.Data + s.Empty + s.Failed }

func (s Summary) String() string {
	return fmt.Sprintf("%d with data, %d empty, %d failed", s.Data, s.Empty, s.Failed)
}

// LogFailures warns about every failed outcome, one line per key.
func LogFailures[K any](stage string, outcomes []Outcome[K]) {
	for _, o := range outcomes {
		if o.Err != nil {
			slog.Warn("bulk task failed", "stage", stage, "key", fmt.Sprint(o.Key), "error", o.Err)
		}
	}
}
