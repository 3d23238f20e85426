package crawler

import (
	"sync"

	"github.com/sirupsen/logrus"

	"webharvest/pkg/models"
)

// FrontierQueue is a thread-safe FIFO queue of frontier entries. FIFO order
// makes the traversal breadth-first by construction: every depth-d resource is
// dequeued before any depth-(d+1) resource, which keeps crawl order
// deterministic and front-loads the shallow pages when maxPages truncates a
// crawl. An explicit queue also replaces per-link recursion, so deep or wide
// sites cannot grow the call stack.
type FrontierQueue struct {
	items  []*models.WorkItem
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
	log    *logrus.Entry
}

// NewFrontierQueue creates an empty frontier queue.
func NewFrontierQueue(log *logrus.Entry) *FrontierQueue {
	q := &FrontierQueue{log: log}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Add appends a work item to the tail of the queue. It reports false when the
// queue is already closed so the caller can rebalance its accounting.
func (q *FrontierQueue) Add(item *models.WorkItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.log.Debugf("Dropped item for closed queue: %s", item.URL)
		return false
	}

	q.items = append(q.items, item)
	q.cond.Signal()
	return true
}

// Pop removes and returns the head entry. It blocks while the queue is empty
// until an item arrives or the queue is closed. Returns nil, false once the
// queue is closed and drained.
func (q *FrontierQueue) Pop() (*models.WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}

	item := q.items[0]
	q.items[0] = nil // allow the entry to be collected
	q.items = q.items[1:]
	return item, true
}

// Close signals that no more items will be added, waking all blocked workers.
func (q *FrontierQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
}

// Len returns the current number of queued items.
func (q *FrontierQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
