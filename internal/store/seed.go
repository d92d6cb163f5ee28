// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Default language seeded on first start.
const (
	DefaultLanguageCode = "en"
	DefaultLanguageName = "English"
)

// Seed creates initial data in the database. It is idempotent: when any
// language already exists nothing is changed.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM languages`).Scan(&count); err != nil {
		return fmt.Errorf("counting languages: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO languages (code, name, native_name, flag_code, is_default, is_active, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, 1, 1, ?, ?)
	`, DefaultLanguageCode, DefaultLanguageName, DefaultLanguageName, "gb", now, now)
	if err != nil {
		return fmt.Errorf("seeding default language: %w", err)
	}

	slog.Info("seeded default language", "code", DefaultLanguageCode)
	return nil
}
