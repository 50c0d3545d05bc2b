package common

import (
	"sync"
)

// WorkQueue is a bounded FIFO queue shared between producers and workers.
// Push blocks while the queue is full and Pop blocks while it is empty. Both return false once the queue is closed.
type WorkQueue[T any] struct {
	items  []T
	head   int
	count  int
	closed bool

	lock     sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
}

func NewWorkQueue[T any](capacity int) *WorkQueue[T] {
	if capacity <= 0 {
		capacity = 1
	}

	q := &WorkQueue[T]{
		items: make([]T, capacity),
	}

	q.notEmpty = sync.NewCond(&q.lock)
	q.notFull = sync.NewCond(&q.lock)

	return q
}

// Push appends item, waiting for a free slot
func (q *WorkQueue[T]) Push(item T) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	for q.count == len(q.items) && !q.closed {
		q.notFull.Wait()
	}

	if q.closed {
		return false
	}

	q.append(item)

	return true
}

// TryPush appends item only if there is a free slot
func (q *WorkQueue[T]) TryPush(item T) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed || q.count == len(q.items) {
		return false
	}

	q.append(item)

	return true
}

// Pop removes the oldest item, waiting until one is available
func (q *WorkQueue[T]) Pop() (item T, ok bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for q.count == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if q.closed {
		return item, false
	}

	return q.take(), true
}

// Close wakes up every blocked Push and Pop. Items left in the queue can be retrieved with Drain.
func (q *WorkQueue[T]) Close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return
	}

	q.closed = true

	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Drain removes and returns all queued items in FIFO order
func (q *WorkQueue[T]) Drain() []T {
	q.lock.Lock()
	defer q.lock.Unlock()

	items := make([]T, 0, q.count)

	for q.count > 0 {
		items = append(items, q.take())
	}

	q.notFull.Broadcast()

	return items
}

func (q *WorkQueue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.count
}

func (q *WorkQueue[T]) IsClosed() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.closed
}

// append and take must be called with the lock held
func (q *WorkQueue[T]) append(item T) {
	q.items[(q.head+q.count)%len(q.items)] = item
	q.count++

	q.notEmpty.Signal()
}

func (q *WorkQueue[T]) take() T {
	var zero T

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.count--

	q.notFull.Signal()

	return item
}
