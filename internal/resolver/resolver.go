// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package resolver maps inbound request paths to a language and a content
// item, and builds outbound language-aware URLs. The resolved language is
// threaded through the request context, never held in package state, so the
// resolver stays reentrant under concurrent requests.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/translation"
)

// LanguageSource provides the language data the resolver needs. Satisfied by
// the registry directly and by its caching wrapper.
type LanguageSource interface {
	List(ctx context.Context, activeOnly bool) ([]model.Language, error)
	Default(ctx context.Context) (*model.Language, error)
}

// CookieName is the language preference cookie.
const CookieName = "polyglot_lang"

// cookieMaxAge keeps the preference for one year.
const cookieMaxAge = 365 * 24 * 60 * 60

type contextKey string

const languageContextKey contextKey = "language_code"

// WithLanguage returns a context carrying the resolved language code.
func WithLanguage(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, languageContextKey, code)
}

// LanguageFromContext returns the resolved language code, or "" when none was
// set.
func LanguageFromContext(ctx context.Context) string {
	code, _ := ctx.Value(languageContextKey).(string)
	return code
}

// SetLanguageCookie persists the detected language for session continuity.
func SetLanguageCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resolver resolves languages and content for inbound requests.
type Resolver struct {
	languages LanguageSource
	store     *translation.Store
	content   content.Accessor
}

// New creates a Resolver.
func New(languages LanguageSource, store *translation.Store, accessor content.Accessor) *Resolver {
	return &Resolver{languages: languages, store: store, content: accessor}
}

// DetectLanguage resolves the request language. Precedence: first path
// segment, then the lang query parameter, then the cookie, then the registry
// default. A source only matches when its value is an active language code;
// anything else falls through to the next source.
func (r *Resolver) DetectLanguage(ctx context.Context, requestPath string, query url.Values, cookieValue string) (string, error) {
	active, err := r.activeCodes(ctx)
	if err != nil {
		return "", err
	}

	if seg := firstSegment(requestPath); seg != "" && active[seg] {
		return seg, nil
	}
	if lang := strings.ToLower(query.Get("lang")); lang != "" && active[lang] {
		return lang, nil
	}
	if cookie := strings.ToLower(cookieValue); cookie != "" && active[cookie] {
		return cookie, nil
	}

	def, err := r.languages.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving default language: %w", err)
	}
	return def.Code, nil
}

func (r *Resolver) activeCodes(ctx context.Context) (map[string]bool, error) {
	langs, err := r.languages.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing active languages: %w", err)
	}
	codes := make(map[string]bool, len(langs))
	for _, l := range langs {
		codes[strings.ToLower(l.Code)] = true
	}
	return codes, nil
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		path = path[:idx]
	}
	return strings.ToLower(path)
}

// ResolveContent maps the path remainder (the part after any language prefix)
// to a content item. The translated slug is tried first; untranslated items
// stay reachable under a language prefix through their original slug.
func (r *Resolver) ResolveContent(ctx context.Context, pathRemainder, code string) (*model.ContentItem, error) {
	slug := strings.Trim(pathRemainder, "/")
	if slug == "" {
		return nil, content.ErrNotFound
	}

	itemID, err := r.store.FindByTranslatedSlug(ctx, slug, code)
	if err == nil {
		return r.content.Get(ctx, itemID)
	}
	if !errors.Is(err, translation.ErrNotFound) {
		return nil, err
	}

	return r.content.GetBySlug(ctx, slug)
}

// BuildURL returns the permalink of an item in the given language. The
// default language keeps the canonical unprefixed permalink; other languages
// get a /{code}/{slug}/ URL with the translated slug when one exists.
func (r *Resolver) BuildURL(ctx context.Context, code string, itemID int64) (string, error) {
	item, err := r.content.Get(ctx, itemID)
	if err != nil {
		return "", err
	}

	def, err := r.languages.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving default language: %w", err)
	}
	if code == def.Code {
		return "/" + item.Slug + "/", nil
	}

	slug := item.Slug
	if t, err := r.store.Get(ctx, itemID, code); err == nil && t.Slug != "" {
		slug = t.Slug
	}
	return "/" + code + "/" + slug + "/", nil
}

// Canonicalize reports whether requestPath needs a permanent redirect because
// it carries an explicit prefix for the default language (e.g. /en/about/
// when en is default), and returns the unprefixed target. Duplicate-content
// URLs for the default language are avoided this way.
func (r *Resolver) Canonicalize(ctx context.Context, requestPath, detected string) (string, bool, error) {
	def, err := r.languages.Default(ctx)
	if err != nil {
		return "", false, fmt.Errorf("resolving default language: %w", err)
	}
	if detected != def.Code {
		return "", false, nil
	}

	prefix := "/" + def.Code
	if requestPath != prefix && !strings.HasPrefix(requestPath, prefix+"/") {
		return "", false, nil
	}

	target := strings.TrimPrefix(requestPath, prefix)
	if target == "" {
		target = "/"
	}
	return target, true, nil
}
