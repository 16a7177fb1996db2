package manager

import (
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/telemetryd/internal/logger"
	"codeberg.org/mutker/telemetryd/internal/pool"
	"codeberg.org/mutker/telemetryd/internal/queue"
	"codeberg.org/mutker/telemetryd/internal/record"
	"codeberg.org/mutker/telemetryd/internal/sink"
)

// Lifecycle states. Transitions are one-way:
// NotStarted -> Running -> Stopping -> Stopped.
const (
	stateNotStarted int32 = iota
	stateRunning
	stateStopping
	stateStopped
)

// Manager connects producers to sinks through a bounded queue drained by a
// single goroutine. In direct mode the drain goroutine writes every sink
// inline, so each sink observes records in queue order. In pool mode it
// enqueues one worker-pool task per (record, sink) pair; a single sink may
// then observe records out of order, which this implementation accepts in
// exchange for slow sinks not stalling fast ones.
//
// A Manager owns its queue, drain goroutine and pool exclusively; sinks are
// shared with the caller and are not closed on Stop.
type Manager struct {
	appName  string
	sinks    []sink.Sink
	queue    *queue.Queue[record.Record]
	pool     *pool.WorkerPool
	usePool  bool
	poolSize int

	state   atomic.Int32
	mu      sync.Mutex // guards sinks until Start snapshots them
	drainWG sync.WaitGroup

	dropped atomic.Uint64
}

// Start transitions the manager to Running, spawning the drain goroutine and
// the worker pool when pool mode was requested. Calling Start on a running
// manager is a no-op; calling it after Stop is rejected.
func (m *Manager) Start() {
	if !m.state.CompareAndSwap(stateNotStarted, stateRunning) {
		if m.state.Load() == stateRunning {
			return
		}
		logger.Warn().Str("app", m.appName).Msg("Start called on a stopped manager")
		return
	}

	if m.usePool {
		m.pool = pool.New(m.poolSize)
	}

	m.drainWG.Add(1)
	go m.drainLoop()

	logger.Info().
		Str("app", m.appName).
		Int("buffer", m.queue.Cap()).
		Bool("pool", m.usePool).
		Msg("Log manager started")
}

// Stop signals shutdown and blocks until every buffered record has been
// delivered: the queue is stopped, the drain goroutine runs dry and joins,
// then the pool finishes its queued tasks and joins. Redundant calls are
// no-ops.
func (m *Manager) Stop() {
	if m.state.CompareAndSwap(stateNotStarted, stateStopped) {
		return
	}
	if !m.state.CompareAndSwap(stateRunning, stateStopping) {
		return
	}

	m.queue.Stop()
	m.drainWG.Wait()

	if m.pool != nil {
		m.pool.Close()
	}

	m.state.Store(stateStopped)

	if dropped := m.dropped.Load(); dropped > 0 {
		logger.Warn().Str("app", m.appName).Uint64("dropped", dropped).Msg("Records dropped on full buffer")
	}
	logger.Info().Str("app", m.appName).Msg("Log manager stopped")
}

// Log offers a record to the queue without blocking. It returns false when
// the manager is not running or the buffer is full; producers must never be
// stalled by slow sinks.
func (m *Manager) Log(rec record.Record) bool {
	if m.state.Load() != stateRunning {
		return false
	}

	if !m.queue.TryPush(rec) {
		m.dropped.Add(1)
		return false
	}

	return true
}

// LogBlocking offers a record, waiting for buffer space. It returns false
// once the manager stops. Callers that prefer backpressure over drops opt in
// here; Log is the default producer path.
func (m *Manager) LogBlocking(rec record.Record) bool {
	if m.state.Load() != stateRunning {
		return false
	}

	return m.queue.Push(rec)
}

// AddSink appends a sink. Sinks must be registered before Start; a late
// registration is ignored because the drain loop snapshots the sink list
// when it begins.
func (m *Manager) AddSink(s sink.Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Load() != stateNotStarted {
		logger.Warn().Str("app", m.appName).Msg("AddSink after Start ignored")
		return
	}

	m.sinks = append(m.sinks, s)
}

// IsRunning reports whether Log currently accepts records.
func (m *Manager) IsRunning() bool {
	return m.state.Load() == stateRunning
}

// Dropped returns the count of records rejected on a full buffer.
func (m *Manager) Dropped() uint64 {
	return m.dropped.Load()
}

func (m *Manager) drainLoop() {
	defer m.drainWG.Done()

	m.mu.Lock()
	sinks := make([]sink.Sink, len(m.sinks))
	copy(sinks, m.sinks)
	m.mu.Unlock()

	for {
		rec, ok := m.queue.Pop()
		if !ok {
			return
		}

		if m.pool != nil {
			m.dispatchPooled(sinks, rec)
		} else {
			for _, s := range sinks {
				writeSink(s, rec)
			}
		}
	}
}

// dispatchPooled fans one record out as an independent task per sink.
func (m *Manager) dispatchPooled(sinks []sink.Sink, rec record.Record) {
	for _, s := range sinks {
		s := s
		if err := m.pool.Submit(func() {
			writeSink(s, rec)
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to submit sink write task")
		}
	}
}

// writeSink delivers one record to one sink, swallowing failures so a broken
// sink cannot affect its peers or the producers.
func writeSink(s sink.Sink, rec record.Record) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered panic in sink write")
		}
	}()

	if err := s.Write(rec); err != nil {
		logger.Warn().Err(err).Msg("Sink write failed")
	}
}
