// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Translation statuses.
const (
	StatusPending = "pending" // no translated content yet
	StatusAuto    = "auto"    // machine translated
	StatusEdited  = "edited"  // touched by a human after machine translation
)

// TranslationFields holds the translatable content and SEO fields of an item.
// A zero-value field means "not translated"; display resolution falls back to
// the default-language value per field, not per row.
type TranslationFields struct {
	Title           string `json:"title"`
	Body            string `json:"body"`
	Excerpt         string `json:"excerpt"`
	Slug            string `json:"slug"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	OGTitle         string `json:"og_title"`
	OGDescription   string `json:"og_description"`
}

// Translation is the stored per-item, per-language content row.
// At most one row exists per (ItemID, LanguageCode) pair.
type Translation struct {
	ID           int64  `json:"id"`
	ItemID       int64  `json:"item_id"`
	LanguageCode string `json:"language_code"`
	TranslationFields
	Status    string    `json:"status"`
	AIModel   string    `json:"ai_model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContentItem is a content entity authored in the default language.
type ContentItem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Excerpt   string    `json:"excerpt"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultFields returns the item's fields as translation fields, used as the
// per-field fallback source during display resolution.
func (c *ContentItem) DefaultFields() TranslationFields {
	return TranslationFields{
		Title:   c.Title,
		Body:    c.Body,
		Excerpt: c.Excerpt,
		Slug:    c.Slug,
	}
}
