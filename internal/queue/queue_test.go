package queue_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/telemetryd/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushPop(t *testing.T) {
	q := queue.New[int](8)

	for i := 0; i < 5; i++ {
		assert.True(t, q.Push(i))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueTryPushFullAndStopped(t *testing.T) {
	q := queue.New[int](2)

	assert.True(t, q.TryPush(1))
	assert.True(t, q.TryPush(2))
	assert.False(t, q.TryPush(3), "TryPush on a full queue must fail without blocking")

	q.Stop()
	_, ok := q.TryPop()
	assert.True(t, ok, "buffered items remain poppable after stop")
	assert.False(t, q.TryPush(4), "TryPush after stop must fail")
}

func TestQueueStopWakesBlockedConsumer(t *testing.T) {
	q := queue.New[int](4)

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	// Give the consumer time to block on the empty queue.
	time.Sleep(20 * time.Millisecond)
	q.Stop()

	select {
	case ok := <-done:
		assert.False(t, ok, "pop on a stopped empty queue must report exhaustion")
	case <-time.After(2 * time.Second):
		t.Fatal("blocked consumer was not woken by stop")
	}
}

func TestQueueStopWakesBlockedProducer(t *testing.T) {
	q := queue.New[int](1)
	require.True(t, q.Push(1))

	done := make(chan bool, 1)
	go func() {
		done <- q.Push(2)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Stop()

	select {
	case ok := <-done:
		assert.False(t, ok, "push blocked at stop time must return false")
	case <-time.After(2 * time.Second):
		t.Fatal("blocked producer was not woken by stop")
	}
}

func TestQueueDrainsAfterStop(t *testing.T) {
	q := queue.New[int](4)
	for i := 0; i < 3; i++ {
		require.True(t, q.Push(i))
	}

	q.Stop()
	assert.True(t, q.IsStopped())
	assert.False(t, q.Push(99), "push after stop must fail")

	for i := 0; i < 3; i++ {
		v, ok := q.Pop()
		require.True(t, ok, "buffered items must drain after stop")
		assert.Equal(t, i, v)
	}

	_, ok := q.Pop()
	assert.False(t, ok, "drained stopped queue must report exhaustion")
}

func TestQueueStopIdempotent(t *testing.T) {
	q := queue.New[int](1)
	q.Stop()
	q.Stop()
	assert.True(t, q.IsStopped())
}

func TestQueueConcurrentFIFOPerProducer(t *testing.T) {
	const producers = 4
	const perProducer = 250

	q := queue.New[[2]int](32)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.True(t, q.Push([2]int{p, i}))
			}
		}(p)
	}

	var consumed [][2]int
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			v, ok := q.Pop()
			if !ok {
				return
			}
			consumed = append(consumed, v)
		}
	}()

	wg.Wait()
	q.Stop()
	<-consumerDone

	require.Len(t, consumed, producers*perProducer)

	// Per-producer submission order must survive the interleaving.
	seen := make(map[int][]int)
	for _, v := range consumed {
		seen[v[0]] = append(seen[v[0]], v[1])
	}
	for p := 0; p < producers; p++ {
		require.Len(t, seen[p], perProducer)
		assert.True(t, sort.IntsAreSorted(seen[p]), "producer %d records out of order", p)
	}
}
