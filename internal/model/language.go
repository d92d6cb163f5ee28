// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the record types shared across the translation pipeline.
package model

import "time"

// Language represents a configured content language.
type Language struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`        // ISO 639-1: en, ru, de, fr
	Name       string    `json:"name"`        // English, Russian, German, French
	NativeName string    `json:"native_name"` // English, Русский, Deutsch, Français
	FlagCode   string    `json:"flag_code"`   // country code for the switcher flag
	IsDefault  bool      `json:"is_default"`  // only one can be default
	IsActive   bool      `json:"is_active"`   // enabled for site
	Position   int64     `json:"position"`    // sort order in language switcher
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommonLanguages provides a list of commonly used languages for seeding
// and for resolving display names when a code is not registered.
var CommonLanguages = []struct {
	Code       string
	Name       string
	NativeName string
	FlagCode   string
}{
	{"en", "English", "English", "gb"},
	{"ru", "Russian", "Русский", "ru"},
	{"de", "German", "Deutsch", "de"},
	{"fr", "French", "Français", "fr"},
	{"es", "Spanish", "Español", "es"},
	{"it", "Italian", "Italiano", "it"},
	{"pt", "Portuguese", "Português", "pt"},
	{"nl", "Dutch", "Nederlands", "nl"},
	{"pl", "Polish", "Polski", "pl"},
	{"uk", "Ukrainian", "Українська", "ua"},
	{"zh", "Chinese", "中文", "cn"},
	{"ja", "Japanese", "日本語", "jp"},
	{"ko", "Korean", "한국어", "kr"},
	{"ar", "Arabic", "العربية", "sa"},
	{"he", "Hebrew", "עברית", "il"},
	{"tr", "Turkish", "Türkçe", "tr"},
	{"vi", "Vietnamese", "Tiếng Việt", "vn"},
	{"th", "Thai", "ไทย", "th"},
	{"hi", "Hindi", "हिन्दी", "in"},
}

// LanguageName returns the English display name for a language code,
// or the code itself when the code is not in the common table.
func LanguageName(code string) string {
	for _, l := range CommonLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
