package queue

import "sync"

// Queue is a bounded FIFO handing items from many producers to one or more
// consumers. Push and Pop block on capacity; Stop is the single cancellation
// primitive: it wakes every waiter, after which pushes fail and pops drain
// whatever is left before reporting exhaustion. The stopped state is terminal.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	buf      *RingBuffer[T]
	stopped  bool
}

// New constructs an active queue with the given capacity.
func New[T any](capacity int) *Queue[T] {
	q := &Queue[T]{
		buf: NewRingBuffer[T](capacity),
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)

	return q
}

// Push blocks until a slot frees up or the queue stops. It returns false when
// the queue stopped before the item could be placed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.IsFull() && !q.stopped {
		q.notFull.Wait()
	}

	if q.stopped {
		return false
	}

	q.buf.TryPush(item)
	q.notEmpty.Signal()

	return true
}

// TryPush places the item only if a slot is free right now. This is the
// producer-facing path: it never blocks, returning false on a full or
// stopped queue.
func (q *Queue[T]) TryPush(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || !q.buf.TryPush(item) {
		return false
	}

	q.notEmpty.Signal()

	return true
}

// Pop blocks until an item arrives or the queue stops. After Stop it keeps
// draining buffered items; the second return value turns false only once the
// queue is both stopped and empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.IsEmpty() && !q.stopped {
		q.notEmpty.Wait()
	}

	if q.stopped && q.buf.IsEmpty() {
		var zero T
		return zero, false
	}

	item, _ := q.buf.TryPop()
	q.notFull.Signal()

	return item, true
}

// TryPop removes the head item only if one is buffered right now.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.buf.TryPop()
	if ok {
		q.notFull.Signal()
	}

	return item, ok
}

// Stop transitions the queue to its terminal state and wakes every blocked
// producer and consumer. It is safe to call more than once.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

func (q *Queue[T]) IsStopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.stopped
}

func (q *Queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.buf.IsEmpty()
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.buf.Len()
}

func (q *Queue[T]) Cap() int {
	return q.buf.Cap()
}
