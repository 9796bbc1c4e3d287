// Package pool runs browser-backed tasks on a bounded set of workers, each
// task with its own freshly launched session.
package pool

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
)

// Size computes the worker bound: min(tasks, parallelism*factor) when factor
// is positive, parallelism-reserve otherwise. The result is at least 1.
func Size(tasks, parallelism, factor, reserve int) int {
	var n int
	if factor > 0 {
		n = min(tasks, parallelism*factor)
	} else {
		n = parallelism - reserve
	}
	return max(n, 1)
}

// Pool bounds how many sessions exist at once
type Pool struct {
	factory browser.Factory
	workers int
	logger  *log.Logger
}

// New returns a pool running at most workers tasks at a time.
func New(factory browser.Factory, workers int, logger *log.Logger) *Pool {
	return &Pool{factory: factory, workers: max(workers, 1), logger: logger}
}

// Workers returns the concurrency bound.
func (p *Pool) Workers() int { return p.workers }

// Result is a task's output tagged with the task's position in the input.
type Result[R any] struct {
	Index int
	Value R
}

// Task processes one input using a session it does not own.
type Task[T, R any] func(ctx context.Context, s browser.Session, task T) R

// Scatter runs fn over every task and returns the results in completion
// order. Each task gets a new session that is closed before its result is
// delivered, whatever happens inside fn. A session that cannot be created
// aborts the remaining tasks and is returned as the error. Tasks are never
// retried.
func Scatter[T, R any](ctx context.Context, p *Pool, tasks []T, fn Task[T, R]) ([]Result[R], error) {
	results := make(chan Result[R], len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		i, task := i, task
		g.Go(func() error {
			r, err := run(gctx, p, task, fn)
			if err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
			results <- Result[R]{Index: i, Value: r}
			return nil
		})
	}

	err := g.Wait()
	close(results)

	out := make([]Result[R], 0, len(tasks))
	for r := range results {
		out = append(out, r)
	}
	return out, err
}

func run[T, R any](ctx context.Context, p *Pool, task T, fn Task[T, R]) (r R, err error) {
	session, err := p.factory.NewSession(ctx)
	if err != nil {
		return r, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && p.logger != nil {
			p.logger.Warn("Error closing browser session", "error", cerr)
		}
	}()
	return fn(ctx, session, task), nil
}
