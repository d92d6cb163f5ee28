// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Queue item statuses. State machine: queued -> processing -> completed|failed.
const (
	QueueStatusQueued     = "queued"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

// DefaultQueuePriority is assigned when the caller does not specify one.
// Lower values are processed sooner.
const DefaultQueuePriority = 5

// QueueItem represents pending translation work for one (item, language) pair.
// Terminal rows (completed, failed) are retained for audit.
type QueueItem struct {
	ID           int64      `json:"id"`
	ItemID       int64      `json:"item_id"`
	LanguageCode string     `json:"language_code"`
	Priority     int64      `json:"priority"`
	Status       string     `json:"status"`
	Attempts     int64      `json:"attempts"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// QueueStats holds per-status queue counts.
type QueueStats struct {
	Queued     int64 `json:"queued"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}
