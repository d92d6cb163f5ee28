// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/model"
)

// Language cache keys.
const (
	keyLanguagesAll    = "languages:all"
	keyLanguagesActive = "languages:active"
	keyLanguageDefault = "languages:default"
)

// languagesTTL bounds staleness even when an invalidation is missed.
const languagesTTL = time.Hour

// Languages caches registry reads on the request path. Admin mutations call
// Invalidate; the TTL is a safety net, not the consistency mechanism.
type Languages struct {
	cache    Cache
	registry *language.Registry
}

// NewLanguages creates a Languages cache over the registry.
func NewLanguages(c Cache, registry *language.Registry) *Languages {
	return &Languages{cache: c, registry: registry}
}

// List returns languages ordered by position, from cache when possible.
func (l *Languages) List(ctx context.Context, activeOnly bool) ([]model.Language, error) {
	key := keyLanguagesAll
	if activeOnly {
		key = keyLanguagesActive
	}

	if data, err := l.cache.Get(ctx, key); err == nil {
		var langs []model.Language
		if err := json.Unmarshal(data, &langs); err == nil {
			return langs, nil
		}
		// Corrupt entry: fall through to the registry and rewrite it
	}

	langs, err := l.registry.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(langs); err == nil {
		_ = l.cache.Set(ctx, key, data, languagesTTL)
	}
	return langs, nil
}

// Default returns the default language, from cache when possible.
func (l *Languages) Default(ctx context.Context) (*model.Language, error) {
	if data, err := l.cache.Get(ctx, keyLanguageDefault); err == nil {
		var lang model.Language
		if err := json.Unmarshal(data, &lang); err == nil {
			return &lang, nil
		}
	}

	lang, err := l.registry.Default(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(lang); err == nil {
		_ = l.cache.Set(ctx, keyLanguageDefault, data, languagesTTL)
	}
	return lang, nil
}

// Invalidate drops all cached language entries. Call after any registry
// mutation.
func (l *Languages) Invalidate(ctx context.Context) error {
	var errs []error
	for _, key := range []string{keyLanguagesAll, keyLanguagesActive, keyLanguageDefault} {
		if err := l.cache.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
