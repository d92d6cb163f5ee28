package worker

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/openrouter"
	"github.com/olegiv/polyglot/internal/translation"
	"github.com/olegiv/polyglot/internal/testutil"
)

// fakeTranslator prefixes translations deterministically, or fails.
type fakeTranslator struct {
	err error
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, target string, _ openrouter.Options) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return target + ": " + text, nil
}

func (f *fakeTranslator) Model() string { return "fake-model" }

type fixture struct {
	db       *sql.DB
	queue    *translation.Queue
	store    *translation.Store
	registry *language.Registry
	content  *content.Store
	worker   *Worker
	fake     *fakeTranslator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.TestDB(t)
	ctx := context.Background()

	f := &fixture{
		db:       db,
		queue:    translation.NewQueue(db),
		store:    translation.NewStore(db),
		registry: language.NewRegistry(db),
		content:  content.NewStore(db),
		fake:     &fakeTranslator{},
	}
	f.worker = New(f.queue, f.store, f.registry, f.fake, f.content, testutil.TestLogger())

	_, err := f.registry.Add(ctx, "en", "English", "", "gb")
	require.NoError(t, err)
	_, err = f.registry.Add(ctx, "de", "German", "Deutsch", "de")
	require.NoError(t, err)
	_, err = f.registry.Add(ctx, "fr", "French", "Français", "fr")
	require.NoError(t, err)

	return f
}

func TestProcessOneSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.content.Create(ctx, "Hello World", "<p>Some body text</p>", "A short excerpt", "hello-world")
	require.NoError(t, err)

	jobID, err := f.queue.Enqueue(ctx, item.ID, "de", model.DefaultQueuePriority)
	require.NoError(t, err)

	processed, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	saved, err := f.store.Get(ctx, item.ID, "de")
	require.NoError(t, err)
	assert.Equal(t, "de: Hello World", saved.Title)
	assert.Contains(t, saved.Body, "Some body text")
	assert.Equal(t, "de: A short excerpt", saved.Excerpt)
	assert.Equal(t, "de-hello-world", saved.Slug)
	assert.Equal(t, model.StatusAuto, saved.Status)
	assert.Equal(t, "fake-model", saved.AIModel)
	assert.NotEmpty(t, saved.MetaTitle)
	assert.NotEmpty(t, saved.MetaDescription)

	job, err := f.queue.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusCompleted, job.Status)
}

func TestProcessOneEmptyQueue(t *testing.T) {
	f := newFixture(t)

	processed, err := f.worker.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessOneMissingItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	jobID, err := f.queue.Enqueue(ctx, 404, "de", model.DefaultQueuePriority)
	require.NoError(t, err)

	processed, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	job, err := f.queue.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusFailed, job.Status)
	assert.Equal(t, "item not found", job.ErrorMessage)
	assert.Equal(t, int64(1), job.Attempts)
}

func TestProcessOneTranslatorFailureIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.content.Create(ctx, "Hello", "<p>Body</p>", "", "hello")
	require.NoError(t, err)

	jobID, err := f.queue.Enqueue(ctx, item.ID, "de", model.DefaultQueuePriority)
	require.NoError(t, err)

	f.fake.err = errors.New("rate limited")

	processed, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	job, err := f.queue.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "rate limited")

	// No partial translation row was written
	_, err = f.store.Get(ctx, item.ID, "de")
	assert.ErrorIs(t, err, translation.ErrNotFound)
}

func TestProcessOneSanitizesTranslatedBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.content.Create(ctx, "T", `<p>ok</p><script>alert(1)</script>`, "", "t")
	require.NoError(t, err)

	_, err = f.queue.Enqueue(ctx, item.ID, "de", model.DefaultQueuePriority)
	require.NoError(t, err)

	processed, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	saved, err := f.store.Get(ctx, item.ID, "de")
	require.NoError(t, err)
	assert.NotContains(t, saved.Body, "<script>")
	assert.Contains(t, saved.Body, "ok")
}

func TestEnqueueAllLanguages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// fr inactive: only de should be queued
	require.NoError(t, f.registry.SetActive(ctx, "fr", false))

	queued, err := f.worker.EnqueueAllLanguages(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, queued)

	stats, err := f.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Queued)

	// Idempotent for in-flight pairs
	queued, err = f.worker.EnqueueAllLanguages(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, queued)

	stats, err = f.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Queued)
}

func TestPoolDrainProcessesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		item, err := f.content.Create(ctx, "Title", "<p>Body</p>", "", "slug-"+string(rune('a'+i)))
		require.NoError(t, err)
		_, err = f.queue.Enqueue(ctx, item.ID, "de", model.DefaultQueuePriority)
		require.NoError(t, err)
	}

	pool := NewPool(f.worker, 3, testutil.TestLogger())
	pool.Drain(ctx)

	stats, err := f.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Completed)
	assert.Zero(t, stats.Queued)
	assert.Zero(t, stats.Processing)
}
