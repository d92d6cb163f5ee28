// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Pool drains the queue with a bounded number of concurrent workers. The
// bound throttles load on the upstream provider independent of queue depth;
// the queue's atomic claim guarantees no job is processed twice.
type Pool struct {
	worker  *Worker
	workers int
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewPool creates a Pool of the given size.
func NewPool(w *Worker, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{worker: w, workers: workers, logger: logger}
}

// Drain processes jobs until the queue is empty or ctx is cancelled. It is a
// no-op when a previous drain is still running, so overlapping trigger ticks
// collapse into one pass.
func (p *Pool) Drain(ctx context.Context) {
	if !p.mu.TryLock() {
		p.logger.Debug("queue drain already in progress, skipping")
		return
	}
	defer p.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				processed, err := p.worker.ProcessOne(ctx)
				if err != nil {
					p.logger.Error("queue worker error", "error", err, "worker_id", id)
					return
				}
				if !processed {
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
