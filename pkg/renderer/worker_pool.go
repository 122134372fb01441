package renderer

import (
	"runtime"
	"sync"
)

// TileTask is one RenderTile call: a job of a tile
type TileTask struct {
	Tile   *Tile
	JobID  int
	TaskID int // Index of the tile in the pass, for collecting results
}

// TileResult reports a finished task
type TileResult struct {
	TaskID int
	JobID  int
	Error  error
}

// WorkerPool runs tile jobs against one renderer in parallel
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// Worker renders the tasks it takes from the shared queue
type Worker struct {
	ID          int
	renderer    *Renderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates numWorkers workers with queues sized for maxTasks in flight.
// Zero or negative numWorkers uses the CPU count.
func NewWorkerPool(r *Renderer, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTasks),
		resultQueue: make(chan TileResult, maxTasks),
		numWorkers:  numWorkers,
	}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    r,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp
}

// Start begins all workers. Later calls do nothing.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for _, worker := range wp.workers {
			wp.wg.Add(1)
			go worker.run(&wp.wg)
		}
	})
}

// Stop lets the workers finish the queued tasks and shuts them down
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
	})
}

// SubmitTask queues a task
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult waits for the next finished task
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		err := w.renderer.RenderTile(task.Tile, task.JobID)
		w.resultQueue <- TileResult{
			TaskID: task.TaskID,
			JobID:  task.JobID,
			Error:  err,
		}
	}
}
