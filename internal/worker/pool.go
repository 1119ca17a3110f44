package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/logger"

	"github.com/rs/zerolog"
)

// Job is one unit of pool work. Name only labels log lines.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// WorkerPool runs jobs on a fixed number of goroutines behind a bounded
// queue. A panicking job is logged and does not take its worker down.
type WorkerPool struct {
	size  int
	queue chan Job
	wg    sync.WaitGroup
	once  sync.Once
	log   zerolog.Logger
}

func NewWorkerPool(workerCount, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < workerCount {
		queueSize = workerCount * 2
	}
	return &WorkerPool{
		size:  workerCount,
		queue: make(chan Job, queueSize),
		log:   logger.Component("worker_pool"),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	wp.log.Info().Int("worker_count", wp.size).Int("queue_size", cap(wp.queue)).Msg("Starting worker pool")

	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.loop(ctx, i)
	}
}

// Stop closes the queue and waits for running jobs. Queued jobs still run
// unless the start context was cancelled. Calling Stop twice is safe.
func (wp *WorkerPool) Stop() {
	wp.once.Do(func() {
		wp.log.Info().Int("queued", len(wp.queue)).Msg("Stopping worker pool")
		close(wp.queue)
	})
	wp.wg.Wait()
	wp.log.Info().Msg("Worker pool stopped")
}

// Submit queues a job without blocking. It reports false when the queue is full.
func (wp *WorkerPool) Submit(job Job) bool {
	select {
	case wp.queue <- job:
		return true
	default:
		wp.log.Warn().Str("job", job.Name).Msg("Worker pool queue full, job rejected")
		return false
	}
}

// Queued reports how many jobs wait for a free worker.
func (wp *WorkerPool) Queued() int {
	return len(wp.queue)
}

func (wp *WorkerPool) loop(ctx context.Context, id int) {
	defer wp.wg.Done()

	log := wp.log.With().Int("worker_id", id).Logger()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Worker stopping, context cancelled")
			return
		case job, ok := <-wp.queue:
			if !ok {
				log.Debug().Msg("Worker stopping, queue closed")
				return
			}
			wp.run(ctx, log, job)
		}
	}
}

func (wp *WorkerPool) run(ctx context.Context, log zerolog.Logger, job Job) {
	start := time.Now()
	err := safeRun(ctx, job)
	if err != nil {
		log.Error().Err(err).Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Job failed")
		return
	}
	log.Debug().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Job finished")
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}
