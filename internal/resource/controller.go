package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a single reservation is larger than the
// configured memory limit and could never be granted.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the number of subspace tasks that may run at once.
	// If 0, defaults to 1.
	MaxWorkers int

	// MemoryLimitBytes bounds the sample memory reserved by running tasks.
	// If 0, no limit is enforced (only tracking).
	MemoryLimitBytes int64

	// DispatchPerSec limits how many tasks are started per second.
	// If 0, unlimited.
	DispatchPerSec float64
}

// Controller hands out worker slots, reserves memory and paces task dispatch.
type Controller struct {
	cfg Config

	// Workers
	workerSem *semaphore.Weighted
	slots     chan int
	busy      atomic.Int64

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Dispatch
	limiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(int64(cfg.MaxWorkers)),
		slots:     make(chan int, cfg.MaxWorkers),
	}
	for i := 1; i <= cfg.MaxWorkers; i++ {
		c.slots <- i
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.DispatchPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.DispatchPerSec), 1)
	}

	return c
}

// MaxWorkers returns the size of the worker pool.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return c.cfg.MaxWorkers
}

// AcquireWorker blocks until a worker slot is free and returns its 1-based id.
func (c *Controller) AcquireWorker(ctx context.Context) (int, error) {
	if c == nil {
		return 1, nil
	}
	if err := c.workerSem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	c.busy.Add(1)
	return <-c.slots, nil
}

// TryAcquireWorker attempts to reserve a worker slot without blocking.
func (c *Controller) TryAcquireWorker() (int, bool) {
	if c == nil {
		return 1, true
	}
	if !c.workerSem.TryAcquire(1) {
		return 0, false
	}
	c.busy.Add(1)
	return <-c.slots, true
}

// ReleaseWorker returns a slot obtained from AcquireWorker.
func (c *Controller) ReleaseWorker(id int) {
	if c == nil {
		return
	}
	c.slots <- id
	c.busy.Add(-1)
	c.workerSem.Release(1)
}

// BusyWorkers returns the number of slots currently held.
func (c *Controller) BusyWorkers() int {
	if c == nil {
		return 0
	}
	return int(c.busy.Load())
}

// AcquireMemory reserves memory, blocking until enough is released or ctx is done.
// Requests larger than the limit fail immediately with ErrMemoryLimitExceeded.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return ErrMemoryLimitExceeded
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// WaitDispatch blocks until the dispatch rate allows another task to start.
func (c *Controller) WaitDispatch(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
