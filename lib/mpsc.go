// Lock-free implementation of MPSC queue (Multiple Producers Single Consumer)

package lib

import (
	"math"
	"sync/atomic"
)

// QueueMPSC is an unbounded or bounded queue that any number of goroutines
// may push into while a single goroutine pops.
type QueueMPSC[T any] struct {
	head   atomic.Pointer[itemMPSC[T]]
	tail   atomic.Pointer[itemMPSC[T]]
	length atomic.Int64
	limit  int64
}

type itemMPSC[T any] struct {
	value T
	next  atomic.Pointer[itemMPSC[T]]
}

// NewQueueMPSC creates a queue holding at most limit items. A limit below
// 1 means unlimited.
func NewQueueMPSC[T any](limit int64) *QueueMPSC[T] {
	if limit < 1 {
		limit = math.MaxInt64
	}
	q := &QueueMPSC[T]{limit: limit}
	empty := &itemMPSC[T]{}
	q.head.Store(empty)
	q.tail.Store(empty)
	return q
}

// Push appends value. It returns false if the queue is full.
func (q *QueueMPSC[T]) Push(value T) bool {
	if q.length.Add(1) > q.limit {
		q.length.Add(-1)
		return false
	}
	i := &itemMPSC[T]{value: value}
	oldHead := q.head.Swap(i)
	oldHead.next.Store(i)
	return true
}

// Pop removes the oldest value. Must be called by one goroutine only.
func (q *QueueMPSC[T]) Pop() (T, bool) {
	var zero T
	tail := q.tail.Load()
	next := tail.next.Load()
	if next == nil {
		return zero, false
	}

	value := next.value
	next.value = zero // let the GC free the value
	q.tail.Store(next)
	q.length.Add(-1)
	return value, true
}

// Len returns the number of items in the queue
func (q *QueueMPSC[T]) Len() int64 {
	return q.length.Load()
}

// Size returns the limit of the queue. -1 - for unlimited
func (q *QueueMPSC[T]) Size() int64 {
	if q.limit == math.MaxInt64 {
		return -1
	}
	return q.limit
}
