// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/translation"
	"github.com/olegiv/polyglot/internal/util"
)

// CreateItemRequest is the request body for authoring a content item.
type CreateItemRequest struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Excerpt string `json:"excerpt,omitempty"`
	Slug    string `json:"slug,omitempty"`
}

// TranslateRequest is the request body for a single-language enqueue.
type TranslateRequest struct {
	Priority int64 `json:"priority,omitempty"`
}

// SaveTranslationRequest is the request body for an operator edit.
type SaveTranslationRequest struct {
	model.TranslationFields
}

func itemIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// CreateItem handles POST /api/items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "Title is required")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(slug) {
		writeBadRequest(w, "Invalid slug")
		return
	}

	item, err := h.content.Create(r.Context(), req.Title, req.Body, req.Excerpt, slug)
	if err != nil {
		h.logger.Error("creating item", "error", err)
		writeInternalError(w, "Failed to create item")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": item})
}

// TranslateItem handles POST /api/items/{id}/translate: enqueues the item for
// every active non-default language.
func (h *Handler) TranslateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		writeBadRequest(w, "Invalid item ID")
		return
	}

	if _, err := h.content.Get(r.Context(), itemID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeNotFound(w, "Item not found")
			return
		}
		h.logger.Error("loading item", "item_id", itemID, "error", err)
		writeInternalError(w, "Failed to load item")
		return
	}

	queued, err := h.worker.EnqueueAllLanguages(r.Context(), itemID)
	if err != nil {
		h.logger.Error("enqueueing item", "item_id", itemID, "error", err)
		writeInternalError(w, "Failed to enqueue translations")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"item_id": itemID, "queued": queued})
}

// TranslateItemLanguage handles POST /api/items/{id}/translate/{code}.
func (h *Handler) TranslateItemLanguage(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		writeBadRequest(w, "Invalid item ID")
		return
	}
	code := chi.URLParam(r, "code")

	var req TranslateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "Invalid JSON body")
			return
		}
	}
	priority := req.Priority
	if priority <= 0 {
		priority = model.DefaultQueuePriority
	}

	lang, err := h.registry.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, language.ErrNotFound) {
			writeNotFound(w, "Language not found")
			return
		}
		h.logger.Error("loading language", "code", code, "error", err)
		writeInternalError(w, "Failed to load language")
		return
	}
	if lang.IsDefault {
		writeBadRequest(w, "Cannot translate into the default language")
		return
	}

	if _, err := h.content.Get(r.Context(), itemID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeNotFound(w, "Item not found")
			return
		}
		h.logger.Error("loading item", "item_id", itemID, "error", err)
		writeInternalError(w, "Failed to load item")
		return
	}

	jobID, err := h.queue.Enqueue(r.Context(), itemID, lang.Code, priority)
	if err != nil {
		h.logger.Error("enqueueing item", "item_id", itemID, "code", lang.Code, "error", err)
		writeInternalError(w, "Failed to enqueue translation")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID})
}

// ListTranslations handles GET /api/items/{id}/translations.
func (h *Handler) ListTranslations(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		writeBadRequest(w, "Invalid item ID")
		return
	}

	list, err := h.translations.ListForItem(r.Context(), itemID)
	if err != nil {
		h.logger.Error("listing translations", "item_id", itemID, "error", err)
		writeInternalError(w, "Failed to list translations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"translations": list})
}

// GetTranslation handles GET /api/items/{id}/translations/{code}.
func (h *Handler) GetTranslation(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		writeBadRequest(w, "Invalid item ID")
		return
	}
	code := chi.URLParam(r, "code")

	t, err := h.translations.Get(r.Context(), itemID, code)
	if err != nil {
		if errors.Is(err, translation.ErrNotFound) {
			writeNotFound(w, "Translation not found")
			return
		}
		h.logger.Error("loading translation", "item_id", itemID, "code", code, "error", err)
		writeInternalError(w, "Failed to load translation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"translation": t})
}

// SaveTranslation handles PUT /api/items/{id}/translations/{code}. Operator
// edits are stored with status edited so the worker's auto output never
// silently overwrites human work.
func (h *Handler) SaveTranslation(w http.ResponseWriter, r *http.Request) {
	itemID, err := itemIDParam(r)
	if err != nil {
		writeBadRequest(w, "Invalid item ID")
		return
	}
	code := chi.URLParam(r, "code")

	var req SaveTranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Slug != "" && !util.IsValidSlug(req.Slug) {
		writeBadRequest(w, "Invalid slug")
		return
	}

	if _, err := h.registry.Get(r.Context(), code); err != nil {
		if errors.Is(err, language.ErrNotFound) {
			writeNotFound(w, "Language not found")
			return
		}
		h.logger.Error("loading language", "code", code, "error", err)
		writeInternalError(w, "Failed to load language")
		return
	}
	if _, err := h.content.Get(r.Context(), itemID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeNotFound(w, "Item not found")
			return
		}
		h.logger.Error("loading item", "item_id", itemID, "error", err)
		writeInternalError(w, "Failed to load item")
		return
	}

	if err := h.translations.Save(r.Context(), itemID, code, req.TranslationFields, model.StatusEdited, ""); err != nil {
		h.logger.Error("saving translation", "item_id", itemID, "code", code, "error", err)
		writeInternalError(w, "Failed to save translation")
		return
	}

	t, err := h.translations.Get(r.Context(), itemID, code)
	if err != nil {
		h.logger.Error("loading translation", "item_id", itemID, "code", code, "error", err)
		writeInternalError(w, "Failed to load translation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"translation": t})
}

// QueueStats handles GET /api/queue/stats.
func (h *Handler) QueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		h.logger.Error("loading queue stats", "error", err)
		writeInternalError(w, "Failed to load queue stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

// RetryQueueJob handles POST /api/queue/{id}/retry. Failed jobs are terminal;
// a retry is a fresh submission for the same item and language.
func (h *Handler) RetryQueueJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid job ID")
		return
	}

	job, err := h.queue.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, translation.ErrJobNotFound) {
			writeNotFound(w, "Job not found")
			return
		}
		h.logger.Error("loading job", "job_id", jobID, "error", err)
		writeInternalError(w, "Failed to load job")
		return
	}
	if job.Status != model.QueueStatusFailed {
		writeConflict(w, "Only failed jobs can be retried")
		return
	}

	newID, err := h.queue.Enqueue(r.Context(), job.ItemID, job.LanguageCode, job.Priority)
	if err != nil {
		h.logger.Error("re-enqueueing job", "job_id", jobID, "error", err)
		writeInternalError(w, "Failed to retry job")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": newID})
}
