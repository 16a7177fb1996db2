package queue_test

import (
	"testing"

	"codeberg.org/mutker/telemetryd/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferFIFO(t *testing.T) {
	r := queue.NewRingBuffer[int](4)

	for i := 1; i <= 4; i++ {
		assert.True(t, r.TryPush(i))
	}
	assert.True(t, r.IsFull())
	assert.False(t, r.TryPush(5), "push on a full buffer must fail")

	for i := 1; i <= 4; i++ {
		v, ok := r.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, v, "pop order must match push order")
	}
	assert.True(t, r.IsEmpty())

	_, ok := r.TryPop()
	assert.False(t, ok, "pop on an empty buffer must fail")
}

func TestRingBufferWraparound(t *testing.T) {
	r := queue.NewRingBuffer[int](3)

	next := 0
	popped := 0
	for round := 0; round < 5; round++ {
		for r.TryPush(next) {
			next++
		}
		v, ok := r.TryPop()
		require.True(t, ok)
		assert.Equal(t, popped, v)
		popped++
	}

	// Drain the remainder and confirm the sequence survived the wraps.
	for {
		v, ok := r.TryPop()
		if !ok {
			break
		}
		assert.Equal(t, popped, v)
		popped++
	}
	assert.Equal(t, next, popped, "every pushed value must come back out")
}

func TestRingBufferOccupancyInvariant(t *testing.T) {
	r := queue.NewRingBuffer[int](5)

	ops := []struct {
		push bool
		want int
	}{
		{true, 1}, {true, 2}, {false, 1}, {true, 2}, {true, 3},
		{true, 4}, {true, 5}, {false, 4}, {false, 3}, {false, 2},
	}

	for i, op := range ops {
		if op.push {
			require.True(t, r.TryPush(i))
		} else {
			_, ok := r.TryPop()
			require.True(t, ok)
		}
		assert.Equal(t, op.want, r.Len())
		assert.GreaterOrEqual(t, r.Len(), 0)
		assert.LessOrEqual(t, r.Len(), r.Cap())
	}
}

func TestRingBufferZeroCapacity(t *testing.T) {
	r := queue.NewRingBuffer[string](0)

	assert.True(t, r.IsEmpty())
	assert.True(t, r.IsFull())
	assert.False(t, r.TryPush("x"))
	_, ok := r.TryPop()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Cap())
}

func TestRingBufferCapacityOne(t *testing.T) {
	r := queue.NewRingBuffer[int](1)

	assert.True(t, r.TryPush(42))
	assert.True(t, r.IsFull())
	assert.False(t, r.TryPush(43))

	v, ok := r.TryPop()
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, r.IsEmpty())
}
