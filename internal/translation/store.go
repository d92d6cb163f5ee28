// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translation provides persistence for per-item, per-language content
// and the durable translation job queue.
package translation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/polyglot/internal/model"
)

// ErrNotFound is returned when no translation row exists for a lookup.
var ErrNotFound = errors.New("translation not found")

// Store persists translations. At most one row exists per
// (item, language code) pair; Save has upsert semantics.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store on top of db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const translationColumns = `id, item_id, language_code, title, body, excerpt, slug,
	meta_title, meta_description, meta_keywords, og_title, og_description,
	status, ai_model, created_at, updated_at`

func scanTranslation(row interface{ Scan(...any) error }) (model.Translation, error) {
	var t model.Translation
	err := row.Scan(&t.ID, &t.ItemID, &t.LanguageCode,
		&t.Title, &t.Body, &t.Excerpt, &t.Slug,
		&t.MetaTitle, &t.MetaDescription, &t.MetaKeywords, &t.OGTitle, &t.OGDescription,
		&t.Status, &t.AIModel, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Get returns the translation for an (item, language) pair, or ErrNotFound.
// An absent row is equivalent to status pending.
func (s *Store) Get(ctx context.Context, itemID int64, code string) (*model.Translation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+translationColumns+` FROM translations WHERE item_id = ? AND language_code = ?`,
		itemID, code)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting translation %d/%s: %w", itemID, code, err)
	}
	return &t, nil
}

// GetWithFallback resolves display fields for an item in the given language.
// Every field falls back to the default-language value independently, because
// partially translated rows are common (title done, body still pending).
func (s *Store) GetWithFallback(ctx context.Context, itemID int64, code string, defaults model.TranslationFields) (model.TranslationFields, error) {
	t, err := s.Get(ctx, itemID, code)
	if errors.Is(err, ErrNotFound) {
		return defaults, nil
	}
	if err != nil {
		return defaults, err
	}

	resolved := t.TranslationFields
	coalesce(&resolved.Title, defaults.Title)
	coalesce(&resolved.Body, defaults.Body)
	coalesce(&resolved.Excerpt, defaults.Excerpt)
	coalesce(&resolved.Slug, defaults.Slug)
	coalesce(&resolved.MetaTitle, defaults.MetaTitle)
	coalesce(&resolved.MetaDescription, defaults.MetaDescription)
	coalesce(&resolved.MetaKeywords, defaults.MetaKeywords)
	coalesce(&resolved.OGTitle, defaults.OGTitle)
	coalesce(&resolved.OGDescription, defaults.OGDescription)
	return resolved, nil
}

func coalesce(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

// Save upserts the translation row for an (item, language) pair and bumps
// updated_at. Status records how the content got there (auto vs edited).
func (s *Store) Save(ctx context.Context, itemID int64, code string, fields model.TranslationFields, status, aiModel string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (item_id, language_code, title, body, excerpt, slug,
			meta_title, meta_description, meta_keywords, og_title, og_description,
			status, ai_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id, language_code) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			excerpt = excluded.excerpt,
			slug = excluded.slug,
			meta_title = excluded.meta_title,
			meta_description = excluded.meta_description,
			meta_keywords = excluded.meta_keywords,
			og_title = excluded.og_title,
			og_description = excluded.og_description,
			status = excluded.status,
			ai_model = excluded.ai_model,
			updated_at = excluded.updated_at
	`, itemID, code, fields.Title, fields.Body, fields.Excerpt, fields.Slug,
		fields.MetaTitle, fields.MetaDescription, fields.MetaKeywords,
		fields.OGTitle, fields.OGDescription, status, aiModel, now, now)
	if err != nil {
		return fmt.Errorf("saving translation %d/%s: %w", itemID, code, err)
	}
	return nil
}

// FindByTranslatedSlug resolves an inbound translated slug to an item id.
// If two rows ever collide on (slug, language) the lowest id wins; the
// schema's per-pair uniqueness makes that effectively unreachable.
func (s *Store) FindByTranslatedSlug(ctx context.Context, slug, code string) (int64, error) {
	var itemID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT item_id FROM translations
		WHERE slug = ? AND language_code = ?
		ORDER BY id LIMIT 1
	`, slug, code).Scan(&itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("finding by slug %s/%s: %w", slug, code, err)
	}
	return itemID, nil
}

// ListForItem returns all translation rows of an item.
func (s *Store) ListForItem(ctx context.Context, itemID int64) ([]model.Translation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+translationColumns+` FROM translations WHERE item_id = ? ORDER BY language_code`, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing translations for item %d: %w", itemID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning translation: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteAllForItem removes every translation row of an item.
func (s *Store) DeleteAllForItem(ctx context.Context, itemID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("deleting translations for item %d: %w", itemID, err)
	}
	return nil
}
