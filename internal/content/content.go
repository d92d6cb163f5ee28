// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content provides access to content items authored in the default
// language.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/polyglot/internal/model"
)

// ErrNotFound is returned when a content item does not exist.
var ErrNotFound = errors.New("content item not found")

// Accessor exposes content items to the translation pipeline and URL resolver.
type Accessor interface {
	Get(ctx context.Context, itemID int64) (*model.ContentItem, error)
	GetBySlug(ctx context.Context, slug string) (*model.ContentItem, error)
}

// Store is the database-backed Accessor over the pages table.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store on top of db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const pageColumns = `id, title, body, excerpt, slug, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (model.ContentItem, error) {
	var c model.ContentItem
	err := row.Scan(&c.ID, &c.Title, &c.Body, &c.Excerpt, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns the content item with the given id.
func (s *Store) Get(ctx context.Context, itemID int64) (*model.ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE id = ?`, itemID)
	c, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", itemID, err)
	}
	return &c, nil
}

// GetBySlug returns the content item with the given default-language slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*model.ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	c, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by slug %s: %w", slug, err)
	}
	return &c, nil
}

// Create inserts a content item and returns it with the assigned id.
func (s *Store) Create(ctx context.Context, title, body, excerpt, slug string) (*model.ContentItem, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (title, body, excerpt, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, title, body, excerpt, slug, now, now)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}
	return &model.ContentItem{
		ID: id, Title: title, Body: body, Excerpt: excerpt, Slug: slug,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}
