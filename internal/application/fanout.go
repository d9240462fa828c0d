// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// FanOutResult is the settled outcome of one fan-out task. Err carries
// failures as values so a failing task can never unwind past the join point.
type FanOutResult[T any] struct {
	Index int
	Value T
	Err   error
}

// FanOut runs task once per item, all concurrently, and waits for every task
// to settle before returning. Items are typically accounts, or (account,
// folder) pairs during folder resolution. The result slice is indexed by item
// position, so output ordering derives from input enumeration order and never
// from completion order. One item's failure degrades the batch but never
// aborts its siblings.
func FanOut[S, T any](ctx context.Context, items []S, task func(ctx context.Context, index int, item S) (T, error)) []FanOutResult[T] {
	results := make([]FanOutResult[T], len(items))

	var wg sync.WaitGroup
	wg.Add(len(items))
	for i, item := range items {
		go func() {
			defer wg.Done()
			defer func() {
				// A panicking task settles as a failure instead of taking
				// the whole batch down with it.
				if v := recover(); v != nil {
					results[i] = FanOutResult[T]{Index: i, Err: fmt.Errorf("fan-out task %d panicked: %v", i, v)}
				}
			}()
			value, err := task(ctx, i, item)
			results[i] = FanOutResult[T]{Index: i, Value: value, Err: err}
		}()
	}
	wg.Wait()

	return results
}

// ProbeFirst runs task against each item strictly in order and returns the
// first success together with the winning index. Later items are never
// attempted once one succeeds. When every item fails, the exhaustion error
// wraps both driven.ErrNotFound and the last underlying failure.
func ProbeFirst[S, T any](ctx context.Context, items []S, task func(ctx context.Context, index int, item S) (T, error)) (T, int, error) {
	var zero T

	var lastErr error
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return zero, -1, err
		}
		value, err := task(ctx, i, item)
		if err == nil {
			return value, i, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return zero, -1, fmt.Errorf("nothing to probe: %w", driven.ErrNotFound)
	}
	return zero, -1, fmt.Errorf("all %d candidates exhausted: %w (last: %w)", len(items), driven.ErrNotFound, lastErr)
}
