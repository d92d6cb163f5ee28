// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package language manages the ordered set of configured content languages.
package language

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/util"
)

// Registry errors.
var (
	ErrNotFound      = errors.New("language not found")
	ErrDuplicateCode = errors.New("language code already registered")
	ErrInvalidInput  = errors.New("invalid language input")
	ErrIsDefault     = errors.New("operation not allowed on the default language")
)

// Registry is the database-backed language registry. Exactly one language is
// default at all times; mutations of the default slot run in a transaction.
type Registry struct {
	db *sql.DB
}

// NewRegistry creates a Registry on top of db.
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

const languageColumns = `id, code, name, native_name, flag_code, is_default, is_active, position, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (model.Language, error) {
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.FlagCode,
		&l.IsDefault, &l.IsActive, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// Add registers a new language. The first language ever registered becomes the
// default so the exactly-one-default invariant holds from the start.
func (r *Registry) Add(ctx context.Context, code, name, nativeName, flagCode string) (*model.Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if !util.IsValidLangCode(code) {
		return nil, fmt.Errorf("%w: code %q must be 2-3 lowercase letters", ErrInvalidInput, code)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if nativeName == "" {
		nativeName = name
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM languages WHERE code = ?`, code).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}

	var total, maxPos int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(position), 0) FROM languages`).Scan(&total, &maxPos); err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	isDefault := total == 0

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO languages (code, name, native_name, flag_code, is_default, is_active, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
	`, code, name, nativeName, flagCode, isDefault, maxPos+1, now, now)
	if err != nil {
		return nil, fmt.Errorf("inserting language: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}

	return &model.Language{
		ID: id, Code: code, Name: name, NativeName: nativeName, FlagCode: flagCode,
		IsDefault: isDefault, IsActive: true, Position: maxPos + 1,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// Get returns the language with the given code.
func (r *Registry) Get(ctx context.Context, code string) (*model.Language, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = ?`, code)
	l, err := scanLanguage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting language %s: %w", code, err)
	}
	return &l, nil
}

// Default returns the default language.
func (r *Registry) Default(ctx context.Context) (*model.Language, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE is_default = 1`)
	l, err := scanLanguage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting default language: %w", err)
	}
	return &l, nil
}

// List returns languages ordered by position. With activeOnly set, inactive
// languages are omitted.
func (r *Registry) List(ctx context.Context, activeOnly bool) ([]model.Language, error) {
	query := `SELECT ` + languageColumns + ` FROM languages`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var langs []model.Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning language: %w", err)
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

// SetDefault atomically makes code the default language, clearing the prior
// default and forcing the new default active.
func (r *Registry) SetDefault(ctx context.Context, code string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM languages WHERE code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err != nil {
		return fmt.Errorf("looking up language %s: %w", code, err)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE languages SET is_default = 0, updated_at = ? WHERE is_default = 1`, now); err != nil {
		return fmt.Errorf("clearing default: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE languages SET is_default = 1, is_active = 1, updated_at = ? WHERE id = ?`, now, id); err != nil {
		return fmt.Errorf("setting default: %w", err)
	}

	return tx.Commit()
}

// SetActive toggles a language's active flag. The default language cannot be
// deactivated.
func (r *Registry) SetActive(ctx context.Context, code string, active bool) error {
	lang, err := r.Get(ctx, code)
	if err != nil {
		return err
	}
	if lang.IsDefault && !active {
		return fmt.Errorf("%w: cannot deactivate %s", ErrIsDefault, code)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE languages SET is_active = ?, updated_at = ? WHERE code = ?`, active, time.Now(), code)
	if err != nil {
		return fmt.Errorf("updating active flag: %w", err)
	}
	return nil
}

// Reorder assigns position index+1 to every listed code, in order. Codes not
// listed keep their relative order, appended after the listed ones.
func (r *Registry) Reorder(ctx context.Context, codes []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT code FROM languages ORDER BY position, id`)
	if err != nil {
		return fmt.Errorf("listing codes: %w", err)
	}
	var current []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scanning code: %w", err)
		}
		current = append(current, c)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	listed := make(map[string]bool, len(codes))
	ordered := make([]string, 0, len(current))
	for _, c := range codes {
		listed[c] = true
		ordered = append(ordered, c)
	}
	for _, c := range current {
		if !listed[c] {
			ordered = append(ordered, c)
		}
	}

	now := time.Now()
	for i, c := range ordered {
		if _, err := tx.ExecContext(ctx,
			`UPDATE languages SET position = ?, updated_at = ? WHERE code = ?`, i+1, now, c); err != nil {
			return fmt.Errorf("updating position of %s: %w", c, err)
		}
	}

	return tx.Commit()
}

// Delete removes a language. The default language cannot be deleted. Existing
// translation rows for the code are intentionally left in place.
func (r *Registry) Delete(ctx context.Context, code string) error {
	lang, err := r.Get(ctx, code)
	if err != nil {
		return err
	}
	if lang.IsDefault {
		return fmt.Errorf("%w: cannot delete %s", ErrIsDefault, code)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM languages WHERE code = ?`, code); err != nil {
		return fmt.Errorf("deleting language %s: %w", code, err)
	}
	return nil
}

// DisplayName resolves the English display name for a code, preferring the
// registered name and falling back to the static common-language table.
func (r *Registry) DisplayName(ctx context.Context, code string) string {
	if lang, err := r.Get(ctx, code); err == nil {
		return lang.Name
	}
	return model.LanguageName(code)
}
