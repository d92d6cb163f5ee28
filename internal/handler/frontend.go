// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/resolver"
	"github.com/olegiv/polyglot/internal/translation"
)

// ContentResponse is the frontend payload for a resolved content item.
type ContentResponse struct {
	ID         int64                   `json:"id"`
	Language   string                  `json:"language"`
	Fields     model.TranslationFields `json:"fields"`
	Status     string                  `json:"status,omitempty"`
	Canonical  string                  `json:"canonical"`
	Alternates map[string]string       `json:"alternates,omitempty"`
}

// ServeContent handles all frontend GET requests: detect the language,
// canonicalize default-language URLs, resolve the slug and respond with the
// per-field fallback view of the item.
func (h *Handler) ServeContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.URL.Path

	var cookieValue string
	if c, err := r.Cookie(resolver.CookieName); err == nil {
		cookieValue = c.Value
	}

	code, err := h.resolver.DetectLanguage(ctx, path, r.URL.Query(), cookieValue)
	if err != nil {
		h.logger.Error("detecting language", "path", path, "error", err)
		writeInternalError(w, "Failed to resolve language")
		return
	}

	target, redirect, err := h.resolver.Canonicalize(ctx, path, code)
	if err != nil {
		h.logger.Error("canonicalizing", "path", path, "error", err)
		writeInternalError(w, "Failed to resolve language")
		return
	}
	if redirect {
		if q := r.URL.RawQuery; q != "" {
			target += "?" + q
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	ctx = resolver.WithLanguage(ctx, code)
	resolver.SetLanguageCookie(w, code)

	remainder := path
	if prefix := "/" + code; remainder == prefix || strings.HasPrefix(remainder, prefix+"/") {
		remainder = strings.TrimPrefix(remainder, prefix)
	}

	if strings.Trim(remainder, "/") == "" {
		h.serveHome(w, r.WithContext(ctx), code)
		return
	}

	item, err := h.resolver.ResolveContent(ctx, remainder, code)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeNotFound(w, "Content not found")
			return
		}
		h.logger.Error("resolving content", "path", path, "language", code, "error", err)
		writeInternalError(w, "Failed to resolve content")
		return
	}

	fields, err := h.translations.GetWithFallback(ctx, item.ID, code, item.DefaultFields())
	if err != nil {
		h.logger.Error("loading translation", "item_id", item.ID, "language", code, "error", err)
		writeInternalError(w, "Failed to load content")
		return
	}

	resp := ContentResponse{
		ID:       item.ID,
		Language: code,
		Fields:   fields,
	}
	if t, err := h.translations.Get(ctx, item.ID, code); err == nil {
		resp.Status = t.Status
	} else if !errors.Is(err, translation.ErrNotFound) {
		h.logger.Error("loading translation status", "item_id", item.ID, "language", code, "error", err)
	}

	canonical, err := h.resolver.BuildURL(ctx, code, item.ID)
	if err != nil {
		h.logger.Error("building canonical url", "item_id", item.ID, "language", code, "error", err)
		writeInternalError(w, "Failed to build URLs")
		return
	}
	resp.Canonical = canonical

	langs, err := h.langCache.List(ctx, true)
	if err != nil {
		h.logger.Error("listing languages", "error", err)
		writeInternalError(w, "Failed to build URLs")
		return
	}
	resp.Alternates = make(map[string]string, len(langs))
	for _, l := range langs {
		alt, err := h.resolver.BuildURL(ctx, l.Code, item.ID)
		if err != nil {
			h.logger.Error("building alternate url", "item_id", item.ID, "language", l.Code, "error", err)
			continue
		}
		resp.Alternates[l.Code] = alt
	}

	writeJSON(w, http.StatusOK, resp)
}

// serveHome answers the site root with the language switcher data.
func (h *Handler) serveHome(w http.ResponseWriter, r *http.Request, code string) {
	langs, err := h.langCache.List(r.Context(), true)
	if err != nil {
		h.logger.Error("listing languages", "error", err)
		writeInternalError(w, "Failed to list languages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language":  code,
		"languages": langs,
	})
}
