// Package batcher accumulates items and flushes them in size-bounded batches.
package batcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Batcher collects items and hands them to a flush callback once the batch
// fills up or the flush interval elapses. Flushes are paced by a rate limiter
// so a deep backlog cannot hammer the sink.
type Batcher[T any] struct {
	logger   *zap.Logger
	flush    func(context.Context, []T) error
	size     int
	interval time.Duration
	limiter  ratelimit.Limiter

	items chan T
	stop  chan struct{}
	wg    sync.WaitGroup
}

// New creates a Batcher. rps bounds flushes per second; rps <= 0 disables
// pacing.
func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, size int, interval time.Duration, rps int) *Batcher[T] {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &Batcher[T]{
		logger:   logger,
		flush:    flush,
		size:     size,
		interval: interval,
		limiter:  limiter,
		items:    make(chan T, size*2),
		stop:     make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(ctx)
	}()
}

// Stop drains everything still buffered into final flushes and waits for the
// loop to exit. After Stop returns, every added item has been handed to the
// flush callback. Stop must be called at most once.
func (b *Batcher[T]) Stop() {
	close(b.stop)
	b.wg.Wait()
}

// Add queues one item. It fails once the batcher is stopped or the context
// ends.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return context.Canceled
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.items <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	batch := make([]T, 0, b.size)
	for {
		select {
		case <-ctx.Done():
			b.flushBatch(ctx, b.drain(ctx, batch))
			return
		case <-b.stop:
			b.flushBatch(ctx, b.drain(ctx, batch))
			return
		case item := <-b.items:
			batch = append(batch, item)
			if len(batch) >= b.size {
				batch = b.flushBatch(ctx, batch)
			}
		case <-ticker.C:
			batch = b.flushBatch(ctx, batch)
		}
	}
}

// drain moves whatever is sitting in the channel into the batch, flushing
// full batches along the way. Items left in the channel on exit would
// otherwise never reach the callback.
func (b *Batcher[T]) drain(ctx context.Context, batch []T) []T {
	for {
		select {
		case item := <-b.items:
			batch = append(batch, item)
			if len(batch) >= b.size {
				batch = b.flushBatch(ctx, batch)
			}
		default:
			return batch
		}
	}
}

// flushBatch hands the batch to the callback and returns the emptied slice.
// Failures are logged; retries belong to the callback.
func (b *Batcher[T]) flushBatch(ctx context.Context, batch []T) []T {
	if len(batch) == 0 {
		return batch
	}

	b.limiter.Take()
	if err := b.flush(ctx, batch); err != nil {
		b.logger.Error("flush batch failed", zap.Int("size", len(batch)), zap.Error(err))
	} else {
		b.logger.Debug("flushed batch", zap.Int("size", len(batch)))
	}
	return batch[:0]
}
