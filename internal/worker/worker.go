// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package worker drains the translation queue: it claims jobs, calls the
// translation client and persists results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/openrouter"
	"github.com/olegiv/polyglot/internal/translation"
	"github.com/olegiv/polyglot/internal/util"
)

const (
	metaTitleWords       = 10
	metaDescriptionWords = 25
)

// Translator is the slice of the translation client the worker needs.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string, opts openrouter.Options) (string, error)
	Model() string
}

// Worker processes translation jobs one at a time. Any failure of a job ends
// in MarkFailed with a readable message; ProcessOne never persists a partially
// translated job.
type Worker struct {
	queue      *translation.Queue
	store      *translation.Store
	registry   *language.Registry
	translator Translator
	content    content.Accessor
	sanitizer  *bluemonday.Policy
	logger     *slog.Logger
}

// New creates a Worker.
func New(queue *translation.Queue, store *translation.Store, registry *language.Registry,
	translator Translator, accessor content.Accessor, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:      queue,
		store:      store,
		registry:   registry,
		translator: translator,
		content:    accessor,
		// Translated bodies come back from an external model; strip anything
		// beyond user-generated-content markup before persisting.
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
	}
}

// ProcessOne claims and processes the next job. It returns false when the
// queue is empty. A non-nil error is only returned for queue infrastructure
// failures; job-level failures terminate in MarkFailed and return true.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	job, err := w.queue.DequeueNext(ctx)
	if errors.Is(err, translation.ErrQueueEmpty) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dequeuing: %w", err)
	}

	w.logger.Info("processing translation job",
		"job_id", job.ID, "item_id", job.ItemID, "language", job.LanguageCode)

	item, err := w.content.Get(ctx, job.ItemID)
	if errors.Is(err, content.ErrNotFound) {
		w.fail(ctx, job, "item not found")
		return true, nil
	}
	if err != nil {
		w.fail(ctx, job, fmt.Sprintf("loading item: %v", err))
		return true, nil
	}

	source, err := w.registry.Default(ctx)
	if err != nil {
		w.fail(ctx, job, fmt.Sprintf("resolving source language: %v", err))
		return true, nil
	}

	fields, err := w.translateItem(ctx, item, source.Code, job.LanguageCode)
	if err != nil {
		// All-or-nothing: nothing was persisted for this job
		w.fail(ctx, job, err.Error())
		return true, nil
	}

	if err := w.store.Save(ctx, job.ItemID, job.LanguageCode, *fields, model.StatusAuto, w.translator.Model()); err != nil {
		w.fail(ctx, job, fmt.Sprintf("saving translation: %v", err))
		return true, nil
	}

	if err := w.queue.MarkCompleted(ctx, job.ID); err != nil {
		w.logger.Error("failed to complete job", "error", err, "job_id", job.ID)
		return true, nil
	}

	w.logger.Info("translation job completed",
		"job_id", job.ID, "item_id", job.ItemID, "language", job.LanguageCode)
	return true, nil
}

// translateItem translates all fields of an item and derives slug and SEO
// fields from the results.
func (w *Worker) translateItem(ctx context.Context, item *model.ContentItem, source, target string) (*model.TranslationFields, error) {
	title, err := w.translator.Translate(ctx, item.Title, source, target, openrouter.Options{})
	if err != nil {
		return nil, fmt.Errorf("translating title: %w", err)
	}

	body, err := w.translator.Translate(ctx, item.Body, source, target, openrouter.Options{PreserveMarkup: true})
	if err != nil {
		return nil, fmt.Errorf("translating body: %w", err)
	}
	body = w.sanitizer.Sanitize(body)

	var excerpt string
	if item.Excerpt != "" {
		excerpt, err = w.translator.Translate(ctx, item.Excerpt, source, target, openrouter.Options{})
		if err != nil {
			return nil, fmt.Errorf("translating excerpt: %w", err)
		}
	}

	slug := util.Slugify(title)
	if slug == "" {
		slug = item.Slug
	}

	metaTitle := util.TrimWords(title, metaTitleWords, "")
	metaDescription := util.TrimWords(util.StripTags(body), metaDescriptionWords, "...")

	return &model.TranslationFields{
		Title:           title,
		Body:            body,
		Excerpt:         excerpt,
		Slug:            slug,
		MetaTitle:       metaTitle,
		MetaDescription: metaDescription,
		OGTitle:         metaTitle,
		OGDescription:   metaDescription,
	}, nil
}

func (w *Worker) fail(ctx context.Context, job *model.QueueItem, message string) {
	w.logger.Warn("translation job failed",
		"job_id", job.ID, "item_id", job.ItemID, "language", job.LanguageCode, "reason", message)
	if err := w.queue.MarkFailed(ctx, job.ID, message); err != nil {
		w.logger.Error("failed to mark job failed", "error", err, "job_id", job.ID)
	}
}

// EnqueueAllLanguages queues a translation job for every active, non-default
// language. Processing happens later, driven by the scheduler.
func (w *Worker) EnqueueAllLanguages(ctx context.Context, itemID int64) (int, error) {
	langs, err := w.registry.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("listing active languages: %w", err)
	}

	queued := 0
	for _, lang := range langs {
		if lang.IsDefault {
			continue
		}
		if _, err := w.queue.Enqueue(ctx, itemID, lang.Code, model.DefaultQueuePriority); err != nil {
			return queued, fmt.Errorf("enqueueing %d/%s: %w", itemID, lang.Code, err)
		}
		queued++
	}
	return queued, nil
}
