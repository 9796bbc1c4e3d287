package queue

import (
	"sync"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Queue collects article stubs in arrival order, admitting each URL once
type Queue struct {
	stubs   []common.ArticleStub
	visited map[string]bool
	mu      sync.Mutex
}

// New creates a new Queue instance
func New() *Queue {
	return &Queue{
		stubs:   make([]common.ArticleStub, 0),
		visited: make(map[string]bool),
	}
}

// Add enqueues stub unless its URL was already seen
func (q *Queue) Add(stub common.ArticleStub) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.visited[stub.URL] {
		return false
	}

	q.visited[stub.URL] = true
	q.stubs = append(q.stubs, stub)
	return true
}

// Drain removes and returns every queued stub in order
func (q *Queue) Drain() []common.ArticleStub {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.stubs
	q.stubs = make([]common.ArticleStub, 0)
	return out
}

// VisitedCount returns the number of distinct URLs admitted
func (q *Queue) VisitedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.visited)
}

