package pool

import (
	"container/list"
	"sync"

	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/logger"
)

// WorkerPool runs short, independent closures on a fixed set of goroutines.
// Tasks are dequeued in submission order; parallel execution is the only
// source of reordering. Close stops intake, lets already-queued tasks finish,
// and joins every worker.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *list.List
	workers int
	stopped bool
	wg      sync.WaitGroup
}

// Future yields the result of a task submitted with SubmitFuture.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

// Wait blocks until the task completes and returns its result. A task panic
// surfaces here as an error rather than crashing the worker.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}

// New spawns a pool with the given number of workers. Sizes below one are
// raised to one.
func New(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}

	p := &WorkerPool{
		tasks:   list.New(),
		workers: workers,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workerLoop()
	}

	logger.Debug().Int("workers", workers).Msg("Worker pool started")

	return p
}

func (p *WorkerPool) workerLoop() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.tasks.Len() == 0 && !p.stopped {
			p.cond.Wait()
		}

		if p.stopped && p.tasks.Len() == 0 {
			p.mu.Unlock()
			return
		}

		task := p.tasks.Remove(p.tasks.Front()).(func())
		p.mu.Unlock()

		runTask(task)
	}
}

// runTask isolates task panics so a misbehaving closure cannot take a worker
// down with it.
func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered panic in pool task")
		}
	}()

	task()
}

// Submit enqueues a unit of work. Submitting to a closed pool fails with
// ErrPoolStopped.
func (p *WorkerPool) Submit(task func()) error {
	p.mu.Lock()

	if p.stopped {
		p.mu.Unlock()
		return errors.New(errors.ErrPoolStopped)
	}

	p.tasks.PushBack(task)
	p.mu.Unlock()

	p.cond.Signal()

	return nil
}

// SubmitFuture enqueues a task whose result the caller wants back. The
// returned Future resolves once the task has run; a panic inside the task
// resolves it with an error.
func (p *WorkerPool) SubmitFuture(task func() (any, error)) (*Future, error) {
	f := &Future{done: make(chan struct{})}

	err := p.Submit(func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = errors.WithData(errors.ErrOperationFailed, r)
			}
		}()

		f.value, f.err = task()
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Close signals stop, waits for every queued task to complete, and joins the
// workers. Safe to call more than once.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()

	logger.Debug().Msg("Worker pool closed, all workers joined")
}

// ThreadCount returns the fixed worker count.
func (p *WorkerPool) ThreadCount() int {
	return p.workers
}

// PendingTasks returns a snapshot of the queued task count.
func (p *WorkerPool) PendingTasks() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.tasks.Len()
}
