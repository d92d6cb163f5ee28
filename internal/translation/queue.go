// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/polyglot/internal/model"
)

// Queue errors.
var (
	// ErrQueueEmpty is returned by DequeueNext when no queued job exists.
	ErrQueueEmpty = errors.New("queue empty")
	// ErrJobNotFound is returned when a job id does not exist.
	ErrJobNotFound = errors.New("queue job not found")
)

// Queue is the durable priority queue of pending translation jobs.
// State machine: queued -> processing -> completed | failed.
type Queue struct {
	db *sql.DB
}

// NewQueue creates a Queue on top of db.
func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

const queueColumns = `id, item_id, language_code, priority, status, attempts, error_message, created_at, processed_at`

func scanQueueItem(row interface{ Scan(...any) error }) (model.QueueItem, error) {
	var q model.QueueItem
	var processedAt sql.NullTime
	err := row.Scan(&q.ID, &q.ItemID, &q.LanguageCode, &q.Priority, &q.Status,
		&q.Attempts, &q.ErrorMessage, &q.CreatedAt, &processedAt)
	if processedAt.Valid {
		q.ProcessedAt = &processedAt.Time
	}
	return q, err
}

// Enqueue adds a translation job for an (item, language) pair. Lower priority
// values are processed sooner. When a non-terminal job already exists for the
// pair the existing job id is returned and nothing changes.
func (q *Queue) Enqueue(ctx context.Context, itemID int64, code string, priority int64) (int64, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM translation_queue
		WHERE item_id = ? AND language_code = ? AND status IN ('queued', 'processing')
	`, itemID, code).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("checking for in-flight job: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO translation_queue (item_id, language_code, priority, status, created_at)
		VALUES (?, ?, ?, 'queued', ?)
	`, itemID, code, priority, time.Now())
	if err != nil {
		return 0, fmt.Errorf("enqueueing %d/%s: %w", itemID, code, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return id, nil
}

// DequeueNext claims the next job: lowest priority value first, oldest first
// within a priority band. The claim is a single UPDATE so no two workers can
// ever receive the same row. Returns ErrQueueEmpty when nothing is queued.
func (q *Queue) DequeueNext(ctx context.Context) (*model.QueueItem, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE translation_queue SET status = 'processing'
		WHERE id = (
			SELECT id FROM translation_queue
			WHERE status = 'queued'
			ORDER BY priority, created_at, id
			LIMIT 1
		) AND status = 'queued'
		RETURNING `+queueColumns)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("claiming next job: %w", err)
	}
	return &item, nil
}

// MarkCompleted transitions a job to completed and stamps processed_at.
func (q *Queue) MarkCompleted(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_queue SET status = 'completed', processed_at = ?
		WHERE id = ? AND status IN ('queued', 'processing')
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("completing job %d: %w", id, err)
	}
	return checkAffected(res, id)
}

// MarkFailed transitions a job to failed, increments attempts and records the
// error message. It never requeues: retry-by-resubmission is the caller's call.
func (q *Queue) MarkFailed(ctx context.Context, id int64, message string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_queue
		SET status = 'failed', attempts = attempts + 1, error_message = ?, processed_at = ?
		WHERE id = ? AND status IN ('queued', 'processing')
	`, message, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failing job %d: %w", id, err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrJobNotFound, id)
	}
	return nil
}

// Get returns a job by id.
func (q *Queue) Get(ctx context.Context, id int64) (*model.QueueItem, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+queueColumns+` FROM translation_queue WHERE id = ?`, id)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting job %d: %w", id, err)
	}
	return &item, nil
}

// Stats returns per-status job counts.
func (q *Queue) Stats(ctx context.Context) (model.QueueStats, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM translation_queue GROUP BY status`)
	if err != nil {
		return model.QueueStats{}, fmt.Errorf("reading queue stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats model.QueueStats
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("scanning stats: %w", err)
		}
		switch status {
		case model.QueueStatusQueued:
			stats.Queued = count
		case model.QueueStatusProcessing:
			stats.Processing = count
		case model.QueueStatusCompleted:
			stats.Completed = count
		case model.QueueStatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}
