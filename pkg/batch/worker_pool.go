package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/tsstruct/pkg/util"
)

// ErrRunnerStopped is returned by Submit after Stop or cancellation.
var ErrRunnerStopped = errors.New("runner is stopped")

// Job is a file to extract.
type Job struct {
	Path  string
	JobID int
}

// ExtractFunc extracts one file. It must be safe for concurrent use.
type ExtractFunc func(path string) (*Result, error)

// Runner is a fixed pool of goroutines feeding jobs to an ExtractFunc.
//
// The worker count must not exceed the parser pool size or workers block
// waiting for a parser; 0 selects util.GetOptimalPoolSize(), which is what
// the parser pools use.
//
//	r := NewRunner(ctx, 0, extract, logger)
//	r.Start()
//	defer r.Stop()
//	go func() {
//	    for _, f := range files {
//	        r.Submit(Job{Path: f})
//	    }
//	    r.FinishSubmitting()
//	}()
//	// read r.Results() and r.Errors() until len(files) items arrived
type Runner struct {
	numWorkers int
	jobs       chan Job
	results    chan *Result
	errors     chan FileError
	wg         sync.WaitGroup
	extract    ExtractFunc
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// RunnerStats is a snapshot of the runner counters.
type RunnerStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}

// NewRunner creates a runner; cancelling ctx stops the workers.
func NewRunner(ctx context.Context, numWorkers int, extract ExtractFunc, logger *slog.Logger) *Runner {
	numWorkers = util.GetOptimalPoolSizeWithOverride(numWorkers)
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numWorkers*2),
		results:    make(chan *Result, numWorkers),
		errors:     make(chan FileError, numWorkers),
		extract:    extract,
		logger:     util.OrDefault(logger),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. It must be called before Submit.
func (r *Runner) Start() {
	if !r.started.CompareAndSwap(false, true) {
		r.logger.Warn("runner already started")
		return
	}
	r.logger.Debug("starting runner", "workers", r.numWorkers)
	for i := 0; i < r.numWorkers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case job, ok := <-r.jobs:
			if !ok {
				return
			}
			r.process(id, job)
		}
	}
}

func (r *Runner) process(workerID int, job Job) {
	result, err := r.extract(job.Path)
	if err != nil {
		r.logger.Debug("extraction failed", "worker_id", workerID, "path", job.Path, "error", err)
		r.jobsFailed.Add(1)
		select {
		case r.errors <- FileError{FilePath: job.Path, Error: err}:
		case <-r.ctx.Done():
		}
		return
	}

	result.JobID = job.JobID
	r.jobsProcessed.Add(1)
	select {
	case r.results <- result:
	case <-r.ctx.Done():
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (r *Runner) Submit(job Job) error {
	if r.stopped.Load() || r.jobsClosed.Load() {
		return ErrRunnerStopped
	}
	r.jobsSubmitted.Add(1)
	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.jobs <- job:
		return nil
	}
}

// Results delivers successful extractions.
func (r *Runner) Results() <-chan *Result { return r.results }

// Errors delivers per-file failures.
func (r *Runner) Errors() <-chan FileError { return r.errors }

// Done is closed when the runner is cancelled.
func (r *Runner) Done() <-chan struct{} { return r.ctx.Done() }

// FinishSubmitting closes the job queue so workers exit once it drains.
// It must be called from the goroutine that submits. Safe to call more
// than once.
func (r *Runner) FinishSubmitting() {
	if r.jobsClosed.CompareAndSwap(false, true) {
		close(r.jobs)
	}
}

// Stop cancels the workers, waits for them to exit and closes the result
// channels. Jobs still queued are dropped. Safe to call more than once.
func (r *Runner) Stop() {
	if !r.stopped.CompareAndSwap(false, true) {
		return
	}
	r.cancel()
	r.wg.Wait()
	close(r.results)
	close(r.errors)

	r.logger.Debug("runner stopped",
		"jobs_submitted", r.jobsSubmitted.Load(),
		"jobs_processed", r.jobsProcessed.Load(),
		"jobs_failed", r.jobsFailed.Load())
}

// Stats returns the current counters.
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		NumWorkers:    r.numWorkers,
		JobsSubmitted: r.jobsSubmitted.Load(),
		JobsProcessed: r.jobsProcessed.Load(),
		JobsFailed:    r.jobsFailed.Load(),
		QueueLength:   len(r.jobs),
	}
}
