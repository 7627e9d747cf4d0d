package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/drillflash/internal/logger"
)

type Job interface {
	Run(context.Context) error
	Name() string
}

type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	queue   int
	cancel  context.CancelFunc
	log     *logger.Logger

	stopOnce  sync.Once
	submitMu  sync.RWMutex // guards stopped and the close of jobs
	stopped   bool
	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		queue:   queueSize,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok || job == nil {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					p.run(ctx, workerLog, job)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) run(ctx context.Context, workerLog *logger.Logger, job Job) {
	jobLog := workerLog.WithField("job", job.Name())
	jobLog.Debug("starting job")
	start := time.Now()

	jobCtx := logger.NewContext(ctx, jobLog)

	if err := job.Run(jobCtx); err != nil {
		p.failed.Add(1)
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
		return
	}
	p.completed.Add(1)
	jobLog.Debug("job completed in %v", time.Since(start))
}

// Stop closes the queue, lets the workers drain what is already queued,
// then cancels the pool context. Calling Stop twice is safe.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info("stopping worker pool")
		p.submitMu.Lock()
		p.stopped = true
		close(p.jobs)
		p.submitMu.Unlock()
		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.log.Info("worker pool stopped: completed=%d, failed=%d, dropped=%d",
			p.completed.Load(), p.failed.Load(), p.dropped.Load())
	})
}

// Submit blocks until the job is queued. It reports false, dropping the
// job, once the pool has been stopped.
func (p *Pool) Submit(job Job) bool {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()
	if p.stopped {
		p.drop(job, "pool stopped")
		return false
	}
	p.log.Debug("submitting job: %s", job.Name())
	p.jobs <- job
	return true
}

// TrySubmit queues the job unless the queue is full or the pool is stopped,
// in which case the job is dropped and false returned.
func (p *Pool) TrySubmit(job Job) bool {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()
	if p.stopped {
		p.drop(job, "pool stopped")
		return false
	}
	select {
	case p.jobs <- job:
		p.log.Debug("submitted job: %s", job.Name())
		return true
	default:
		p.drop(job, "queue full")
		return false
	}
}

func (p *Pool) drop(job Job, reason string) {
	p.dropped.Add(1)
	p.log.Warn("%s, dropping job: %s", reason, job.Name())
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// Stats returns how many jobs completed, failed and were dropped.
func (p *Pool) Stats() (completed, failed, dropped int64) {
	return p.completed.Load(), p.failed.Load(), p.dropped.Load()
}
