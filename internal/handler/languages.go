// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/polyglot/internal/language"
)

// AddLanguageRequest is the request body for registering a language.
type AddLanguageRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name,omitempty"`
	FlagCode   string `json:"flag_code,omitempty"`
}

// ReorderRequest is the request body for reordering the language switcher.
type ReorderRequest struct {
	Codes []string `json:"codes"`
}

// ActivateRequest is the request body for toggling a language.
type ActivateRequest struct {
	Active bool `json:"active"`
}

// ListLanguages handles GET /api/languages.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.registry.List(r.Context(), false)
	if err != nil {
		h.logger.Error("listing languages", "error", err)
		writeInternalError(w, "Failed to list languages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": langs})
}

// AddLanguage handles POST /api/languages.
func (h *Handler) AddLanguage(w http.ResponseWriter, r *http.Request) {
	var req AddLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	lang, err := h.registry.Add(r.Context(), req.Code, req.Name, req.NativeName, req.FlagCode)
	switch {
	case errors.Is(err, language.ErrInvalidInput):
		writeBadRequest(w, err.Error())
		return
	case errors.Is(err, language.ErrDuplicateCode):
		writeConflict(w, "Language code already registered")
		return
	case err != nil:
		h.logger.Error("adding language", "code", req.Code, "error", err)
		writeInternalError(w, "Failed to add language")
		return
	}

	h.invalidateLanguages(r)
	writeJSON(w, http.StatusCreated, map[string]any{"language": lang})
}

// SetDefaultLanguage handles POST /api/languages/{code}/default.
func (h *Handler) SetDefaultLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	err := h.registry.SetDefault(r.Context(), code)
	switch {
	case errors.Is(err, language.ErrNotFound):
		writeNotFound(w, "Language not found")
		return
	case err != nil:
		h.logger.Error("setting default language", "code", code, "error", err)
		writeInternalError(w, "Failed to set default language")
		return
	}

	h.invalidateLanguages(r)
	writeJSON(w, http.StatusOK, map[string]any{"default": code})
}

// SetLanguageActive handles POST /api/languages/{code}/activate.
func (h *Handler) SetLanguageActive(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	err := h.registry.SetActive(r.Context(), code, req.Active)
	switch {
	case errors.Is(err, language.ErrNotFound):
		writeNotFound(w, "Language not found")
		return
	case errors.Is(err, language.ErrIsDefault):
		writeConflict(w, "Cannot deactivate the default language")
		return
	case err != nil:
		h.logger.Error("toggling language", "code", code, "error", err)
		writeInternalError(w, "Failed to update language")
		return
	}

	h.invalidateLanguages(r)
	writeJSON(w, http.StatusOK, map[string]any{"code": code, "active": req.Active})
}

// ReorderLanguages handles POST /api/languages/reorder.
func (h *Handler) ReorderLanguages(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if err := h.registry.Reorder(r.Context(), req.Codes); err != nil {
		h.logger.Error("reordering languages", "error", err)
		writeInternalError(w, "Failed to reorder languages")
		return
	}

	h.invalidateLanguages(r)

	langs, err := h.registry.List(r.Context(), false)
	if err != nil {
		h.logger.Error("listing languages", "error", err)
		writeInternalError(w, "Failed to list languages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": langs})
}

// DeleteLanguage handles DELETE /api/languages/{code}. Translations for the
// removed language are kept and become reachable again on re-registration.
func (h *Handler) DeleteLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	err := h.registry.Delete(r.Context(), code)
	switch {
	case errors.Is(err, language.ErrNotFound):
		writeNotFound(w, "Language not found")
		return
	case errors.Is(err, language.ErrIsDefault):
		writeConflict(w, "Cannot delete the default language")
		return
	case err != nil:
		h.logger.Error("deleting language", "code", code, "error", err)
		writeInternalError(w, "Failed to delete language")
		return
	}

	h.invalidateLanguages(r)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": code})
}

func (h *Handler) invalidateLanguages(r *http.Request) {
	if err := h.langCache.Invalidate(r.Context()); err != nil {
		h.logger.Warn("invalidating language cache", "error", err)
	}
}
