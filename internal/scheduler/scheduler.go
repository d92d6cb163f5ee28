// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler triggers periodic queue drains.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/polyglot/internal/worker"
)

// Scheduler runs the translation queue drain on a fixed schedule. The pool
// collapses overlapping ticks, so a slow drain never stacks up behind the
// next one.
type Scheduler struct {
	pool   *worker.Pool
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Scheduler driving the given pool.
func New(pool *worker.Pool, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		pool:   pool,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the scheduler with a queue drain every minute.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		s.pool.Drain(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler and waits for a running drain tick.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
