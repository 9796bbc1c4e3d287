package pool

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
	"github.com/arovil7777/naver-news-crawling/internal/browser/browsertest"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name                                 string
		tasks, parallelism, factor, reserve int
		want                                 int
	}{
		{"factor bounded by tasks", 3, 8, 2, 0, 3},
		{"factor bounded by cpus", 100, 4, 2, 0, 8},
		{"reserve", 100, 8, 0, 2, 6},
		{"reserve exceeds parallelism", 100, 2, 0, 4, 1},
		{"no tasks", 0, 8, 2, 0, 1},
		{"zero parallelism", 10, 0, 3, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.tasks, tt.parallelism, tt.factor, tt.reserve))
		})
	}
}

func newPool(f browser.Factory, workers int) *Pool {
	return New(f, workers, log.New(io.Discard))
}

func TestScatterClosesEverySession(t *testing.T) {
	factory := browsertest.NewFactory(nil)
	tasks := []int{1, 2, 3, 4, 5, 6, 7, 8}

	results, err := Scatter(context.Background(), newPool(factory, 3), tasks,
		func(ctx context.Context, s browser.Session, n int) int {
			return n * n
		})
	require.NoError(t, err)
	require.Len(t, results, len(tasks))

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, tasks[i]*tasks[i], r.Value)
	}
	assert.Equal(t, len(tasks), factory.Opened())
	assert.Equal(t, len(tasks), factory.Closed())
}

func TestScatterClosesSessionOnPanic(t *testing.T) {
	factory := browsertest.NewFactory(nil)

	assert.Panics(t, func() {
		_, _ = run(context.Background(), newPool(factory, 1), 1,
			func(ctx context.Context, s browser.Session, n int) int {
				panic("boom")
			})
	})
	assert.Equal(t, 1, factory.Opened())
	assert.Equal(t, 1, factory.Closed())
}

func TestScatterRespectsWorkerBound(t *testing.T) {
	factory := browsertest.NewFactory(nil)
	var active, peak atomic.Int64

	_, err := Scatter(context.Background(), newPool(factory, 2), make([]struct{}, 10),
		func(ctx context.Context, s browser.Session, _ struct{}) bool {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return true
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestScatterReturnsInCompletionOrder(t *testing.T) {
	factory := browsertest.NewFactory(nil)
	delays := []time.Duration{60 * time.Millisecond, 0}

	results, err := Scatter(context.Background(), newPool(factory, 2), delays,
		func(ctx context.Context, s browser.Session, d time.Duration) time.Duration {
			time.Sleep(d)
			return d
		})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, 0, results[1].Index)
}

func TestScatterLaunchFailureIsFatal(t *testing.T) {
	factory := browsertest.NewFactory(nil)
	factory.LaunchErr = errors.New("chrome not found")

	results, err := Scatter(context.Background(), newPool(factory, 2), []int{1, 2, 3},
		func(ctx context.Context, s browser.Session, n int) int { return n })

	assert.ErrorIs(t, err, common.ErrFatal)
	assert.Empty(t, results)
	assert.Equal(t, factory.Opened(), factory.Closed())
}
