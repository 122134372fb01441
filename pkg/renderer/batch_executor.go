package renderer

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// BatchExecutor is a fixed pool of goroutines that runs closed batches of work.
// ExecuteAll returns only when every item of its batch has finished, which is
// the barrier between the generation, intersection and shading phases of a batch.
// It is safe for concurrent use; each call waits for its own batch only.
type BatchExecutor struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewBatchExecutor starts workers goroutines. Zero or negative uses GOMAXPROCS.
func NewBatchExecutor(workers int) *BatchExecutor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	e := &BatchExecutor{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	e.running.Store(true)

	e.wg.Add(workers)
	for range workers {
		go e.worker()
	}
	return e
}

func (e *BatchExecutor) worker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			for {
				select {
				case work := <-e.queue:
					work()
				default:
					return
				}
			}
		case work := <-e.queue:
			work()
		}
	}
}

// ExecuteAll runs every item and waits for all of them.
// After Close the items run on the calling goroutine.
func (e *BatchExecutor) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !e.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var batch sync.WaitGroup
	batch.Add(len(work))
	for _, fn := range work {
		wrapped := func() {
			defer batch.Done()
			fn()
		}
		select {
		case e.queue <- wrapped:
		case <-e.done:
			wrapped()
		}
	}
	batch.Wait()
}

// Run splits [0, n) into one contiguous chunk per worker and calls fn on each chunk
func (e *BatchExecutor) Run(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	chunks := min(e.workers, n)
	size := (n + chunks - 1) / chunks
	work := make([]func(), 0, chunks)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		work = append(work, func() { fn(lo, hi) })
	}
	e.ExecuteAll(work)
}

// Workers returns the pool size
func (e *BatchExecutor) Workers() int {
	return e.workers
}

// Close cancels the pool and joins every worker after the queued work drains.
// It must not race with ExecuteAll. Safe to call more than once.
func (e *BatchExecutor) Close() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.done)
	e.wg.Wait()
}
