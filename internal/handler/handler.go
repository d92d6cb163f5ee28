// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP surface: the language-aware content
// frontend and the JSON admin API.
package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/polyglot/internal/cache"
	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/resolver"
	"github.com/olegiv/polyglot/internal/translation"
	"github.com/olegiv/polyglot/internal/worker"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	registry     *language.Registry
	langCache    *cache.Languages
	translations *translation.Store
	queue        *translation.Queue
	content      *content.Store
	resolver     *resolver.Resolver
	worker       *worker.Worker
	logger       *slog.Logger
}

// New creates a Handler.
func New(
	registry *language.Registry,
	langCache *cache.Languages,
	translations *translation.Store,
	queue *translation.Queue,
	contentStore *content.Store,
	res *resolver.Resolver,
	w *worker.Worker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		registry:     registry,
		langCache:    langCache,
		translations: translations,
		queue:        queue,
		content:      contentStore,
		resolver:     res,
		worker:       w,
		logger:       logger,
	}
}

// Routes mounts all handlers on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", h.ListLanguages)
		r.Post("/languages", h.AddLanguage)
		r.Post("/languages/reorder", h.ReorderLanguages)
		r.Post("/languages/{code}/default", h.SetDefaultLanguage)
		r.Post("/languages/{code}/activate", h.SetLanguageActive)
		r.Delete("/languages/{code}", h.DeleteLanguage)

		r.Post("/items", h.CreateItem)
		r.Post("/items/{id}/translate", h.TranslateItem)
		r.Post("/items/{id}/translate/{code}", h.TranslateItemLanguage)
		r.Get("/items/{id}/translations", h.ListTranslations)
		r.Get("/items/{id}/translations/{code}", h.GetTranslation)
		r.Put("/items/{id}/translations/{code}", h.SaveTranslation)

		r.Get("/queue/stats", h.QueueStats)
		r.Post("/queue/{id}/retry", h.RetryQueueJob)
	})

	r.Get("/*", h.ServeContent)
}
