package manager_test

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/telemetryd/internal/manager"
	"codeberg.org/mutker/telemetryd/internal/record"
	"codeberg.org/mutker/telemetryd/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink captures every delivered record.
type memorySink struct {
	mu      sync.Mutex
	records []record.Record
}

func (s *memorySink) Write(rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) snapshot() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

// slowSink sleeps on every write to simulate a laggy destination.
type slowSink struct {
	memorySink
	delay time.Duration
}

func (s *slowSink) Write(rec record.Record) error {
	time.Sleep(s.delay)
	return s.memorySink.Write(rec)
}

// panicSink explodes on every write.
type panicSink struct{}

func (panicSink) Write(record.Record) error { panic("sink failure") }
func (panicSink) Close() error              { return nil }

// failSink returns an error on every write.
type failSink struct{}

func (failSink) Write(record.Record) error { return fmt.Errorf("disk full") }
func (failSink) Close() error              { return nil }

func buildManager(t *testing.T, buffer int, sinks ...sink.Sink) *manager.Manager {
	t.Helper()

	b := manager.NewBuilder().SetAppName("test").SetBufferSize(buffer)
	for _, s := range sinks {
		b.AddSink(s)
	}

	m, err := b.Build()
	require.NoError(t, err)

	return m
}

func TestDirectModeDeliversInOrder(t *testing.T) {
	s := &memorySink{}
	m := buildManager(t, 5, s)

	m.Start()
	for _, payload := range []int{10, 30, 50, 70, 90} {
		assert.True(t, m.Log(record.New("test", record.CPU, payload)))
	}
	m.Stop()

	got := s.snapshot()
	require.Len(t, got, 5)

	wantSeverities := []record.Severity{
		record.Info, record.Warn, record.Warn, record.Warn, record.Critical,
	}
	wantPayloads := []int{10, 30, 50, 70, 90}
	for i, rec := range got {
		assert.Equal(t, wantPayloads[i], rec.Payload())
		assert.Equal(t, wantSeverities[i], rec.Severity())
	}
}

func TestProducerNeverBlocksOnSlowSink(t *testing.T) {
	s := &slowSink{delay: 20 * time.Millisecond}
	m := buildManager(t, 3, s)

	m.Start()

	accepted := 0
	start := time.Now()
	for i := 0; i < 100; i++ {
		if m.Log(record.New("test", record.CPU, i%100)) {
			accepted++
		}
	}
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second, "non-blocking producer must not wait on the sink")

	m.Stop()

	got := s.snapshot()
	assert.Len(t, got, accepted, "every accepted record must be delivered, nothing else")
	assert.Equal(t, uint64(100-accepted), m.Dropped())

	// Deliveries are an ordered subsequence of the attempts.
	payloads := make([]int, len(got))
	for i, rec := range got {
		payloads[i] = rec.Payload()
	}
	assert.True(t, sort.IntsAreSorted(payloads))
}

func TestMultiProducerFanIn(t *testing.T) {
	const producers = 4
	const perProducer = 25

	s := &memorySink{}
	m := buildManager(t, 100, s)

	m.Start()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			app := fmt.Sprintf("producer-%d", p)
			for i := 0; i < perProducer; i++ {
				assert.True(t, m.LogBlocking(record.New(app, record.RAM, i)))
			}
		}(p)
	}
	wg.Wait()
	m.Stop()

	got := s.snapshot()
	require.Len(t, got, producers*perProducer)

	perApp := make(map[string][]int)
	for _, rec := range got {
		perApp[rec.AppName()] = append(perApp[rec.AppName()], rec.Payload())
	}
	for p := 0; p < producers; p++ {
		app := fmt.Sprintf("producer-%d", p)
		require.Len(t, perApp[app], perProducer)
		assert.True(t, sort.IntsAreSorted(perApp[app]),
			"%s records must keep submission order", app)
	}
}

func TestPoolModeFanOut(t *testing.T) {
	s1 := &memorySink{}
	s2 := &memorySink{}

	m, err := manager.NewBuilder().
		SetAppName("test").
		SetBufferSize(10).
		UsePool(4).
		AddSink(s1).
		AddSink(s2).
		Build()
	require.NoError(t, err)

	m.Start()
	for i := 0; i < 10; i++ {
		assert.True(t, m.LogBlocking(record.New("test", record.GPU, i)))
	}
	m.Stop()

	for _, s := range []*memorySink{s1, s2} {
		got := s.snapshot()
		require.Len(t, got, 10, "each sink must see every record exactly once")

		seen := make(map[int]int)
		for _, rec := range got {
			seen[rec.Payload()]++
		}
		for i := 0; i < 10; i++ {
			assert.Equal(t, 1, seen[i], "payload %d must be written exactly once per sink", i)
		}
	}
}

func TestStartStopIdempotent(t *testing.T) {
	s := &memorySink{}
	m := buildManager(t, 4, s)

	m.Start()
	m.Start()
	assert.True(t, m.IsRunning())

	assert.True(t, m.Log(record.New("test", record.CPU, 1)))

	m.Stop()
	m.Stop()
	assert.False(t, m.IsRunning())

	require.Len(t, s.snapshot(), 1)
}

func TestLogOutsideRunning(t *testing.T) {
	m := buildManager(t, 4, &memorySink{})

	assert.False(t, m.Log(record.New("test", record.CPU, 1)), "log before start must fail")
	assert.False(t, m.LogBlocking(record.New("test", record.CPU, 1)))

	m.Start()
	m.Stop()

	assert.False(t, m.Log(record.New("test", record.CPU, 1)), "log after stop must fail")
}

func TestStopDrainsBufferedRecords(t *testing.T) {
	s := &slowSink{delay: 5 * time.Millisecond}
	m := buildManager(t, 50, s)

	m.Start()
	accepted := 0
	for i := 0; i < 50; i++ {
		if m.Log(record.New("test", record.CPU, i)) {
			accepted++
		}
	}
	m.Stop()

	assert.Len(t, s.snapshot(), accepted, "stop must drain every buffered record")
}

func TestFailingSinkDoesNotAffectPeers(t *testing.T) {
	healthy := &memorySink{}
	m := buildManager(t, 8, failSink{}, healthy)

	m.Start()
	for i := 0; i < 5; i++ {
		assert.True(t, m.LogBlocking(record.New("test", record.CPU, i)))
	}
	m.Stop()

	assert.Len(t, healthy.snapshot(), 5)
}

func TestPanickingSinkIsIsolated(t *testing.T) {
	healthy := &memorySink{}
	m := buildManager(t, 8, panicSink{}, healthy)

	m.Start()
	for i := 0; i < 5; i++ {
		assert.True(t, m.LogBlocking(record.New("test", record.CPU, i)))
	}
	m.Stop()

	assert.Len(t, healthy.snapshot(), 5, "a panicking sink must not starve its peers")
}

func TestPanickingSinkIsolatedInPoolMode(t *testing.T) {
	healthy := &memorySink{}

	m, err := manager.NewBuilder().
		SetAppName("test").
		SetBufferSize(8).
		UsePool(2).
		AddSink(panicSink{}).
		AddSink(healthy).
		Build()
	require.NoError(t, err)

	m.Start()
	for i := 0; i < 5; i++ {
		assert.True(t, m.LogBlocking(record.New("test", record.CPU, i)))
	}
	m.Stop()

	assert.Len(t, healthy.snapshot(), 5)
}

func TestAddSinkAfterStartIgnored(t *testing.T) {
	s := &memorySink{}
	late := &memorySink{}
	m := buildManager(t, 4, s)

	m.Start()
	m.AddSink(late)
	assert.True(t, m.LogBlocking(record.New("test", record.CPU, 1)))
	m.Stop()

	assert.Len(t, s.snapshot(), 1)
	assert.Empty(t, late.snapshot())
}

func TestBuilderValidation(t *testing.T) {
	_, err := manager.NewBuilder().SetBufferSize(4).Build()
	assert.Error(t, err, "missing app name")

	_, err = manager.NewBuilder().SetAppName("x").SetBufferSize(0).Build()
	assert.Error(t, err, "zero buffer")

	_, err = manager.NewBuilder().SetAppName("x").UsePool(0).Build()
	assert.Error(t, err, "zero pool size")

	m, err := manager.NewBuilder().SetAppName("x").Build()
	require.NoError(t, err)
	require.NotNil(t, m)
}
