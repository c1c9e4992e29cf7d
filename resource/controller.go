// Package resource bounds the concurrency, in-flight bytes and IO throughput of
// payload store writes.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent store operations.
	// If 0, defaults to 1.
	MaxWorkers int64

	// MaxInFlightBytes bounds the payload bytes held by running operations.
	// If 0, no hard limit is enforced (only tracking).
	MaxInFlightBytes int64

	// IOLimitBytesPerSec is the maximum write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared limits for store operations.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted

	bytesSem *semaphore.Weighted // nil if unlimited
	inFlight atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.MaxInFlightBytes > 0 {
		c.bytesSem = semaphore.NewWeighted(cfg.MaxInFlightBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Workers returns the configured worker limit (0 for a nil controller).
func (c *Controller) Workers() int {
	if c == nil {
		return 0
	}
	return int(c.cfg.MaxWorkers)
}

// AcquireWorker reserves a worker slot, blocking until one is free or ctx is done.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.workers.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workers.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// AcquireBytes reserves n in-flight bytes. With a hard limit configured it blocks
// until the bytes are available or ctx is canceled. Requests larger than the limit
// are clamped to it so they can still proceed alone.
func (c *Controller) AcquireBytes(ctx context.Context, n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.bytesSem != nil {
		if err := c.bytesSem.Acquire(ctx, c.clamp(n)); err != nil {
			return err
		}
	}
	c.inFlight.Add(n)
	return nil
}

// ReleaseBytes releases bytes reserved with AcquireBytes.
func (c *Controller) ReleaseBytes(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.bytesSem != nil {
		c.bytesSem.Release(c.clamp(n))
	}
	c.inFlight.Add(-n)
}

func (c *Controller) clamp(n int64) int64 {
	if n > c.cfg.MaxInFlightBytes {
		return c.cfg.MaxInFlightBytes
	}
	return n
}

// InFlightBytes returns the bytes currently reserved.
func (c *Controller) InFlightBytes() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// WaitIO waits until the IO limit allows n bytes. Requests above the burst size are
// split.
func (c *Controller) WaitIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Do runs fn holding a worker slot, n in-flight bytes and n bytes of IO budget.
func (c *Controller) Do(ctx context.Context, n int, fn func(context.Context) error) error {
	if err := c.AcquireWorker(ctx); err != nil {
		return err
	}
	defer c.ReleaseWorker()

	if err := c.AcquireBytes(ctx, int64(n)); err != nil {
		return err
	}
	defer c.ReleaseBytes(int64(n))

	if err := c.WaitIO(ctx, n); err != nil {
		return err
	}
	return fn(ctx)
}
