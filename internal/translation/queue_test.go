package translation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/testutil"
)

func TestEnqueueIsIdempotentForInFlightPairs(t *testing.T) {
	q := NewQueue(testutil.TestDB(t))
	ctx := context.Background()

	id1, err := q.Enqueue(ctx, 5, "de", model.DefaultQueuePriority)
	require.NoError(t, err)

	id2, err := q.Enqueue(ctx, 5, "de", 1)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Queued)

	// Still idempotent while processing
	claimed, err := q.DequeueNext(ctx)
	require.NoError(t, err)
	require.Equal(t, id1, claimed.ID)

	id3, err := q.Enqueue(ctx, 5, "de", model.DefaultQueuePriority)
	require.NoError(t, err)
	assert.Equal(t, id1, id3)

	// A terminal row frees the pair for re-enqueue
	require.NoError(t, q.MarkFailed(ctx, id1, "provider down"))
	id4, err := q.Enqueue(ctx, 5, "de", model.DefaultQueuePriority)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id4)
}

func TestDequeueOrderAndClaim(t *testing.T) {
	q := NewQueue(testutil.TestDB(t))
	ctx := context.Background()

	low, err := q.Enqueue(ctx, 1, "de", 9)
	require.NoError(t, err)
	first, err := q.Enqueue(ctx, 2, "de", 1)
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, 3, "de", 1)
	require.NoError(t, err)

	// Lowest priority value first, FIFO within the band
	a, err := q.DequeueNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, a.ID)
	assert.Equal(t, model.QueueStatusProcessing, a.Status)

	b, err := q.DequeueNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, b.ID)

	c, err := q.DequeueNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, low, c.ID)

	_, err = q.DequeueNext(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	q := NewQueue(testutil.TestDB(t))
	ctx := context.Background()

	id, err := q.Enqueue(ctx, 1, "fr", model.DefaultQueuePriority)
	require.NoError(t, err)

	_, err = q.DequeueNext(ctx)
	require.NoError(t, err)

	require.NoError(t, q.MarkFailed(ctx, id, "rate limited"))

	job, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusFailed, job.Status)
	assert.Equal(t, int64(1), job.Attempts)
	assert.Equal(t, "rate limited", job.ErrorMessage)
	assert.NotNil(t, job.ProcessedAt)

	// Terminal rows cannot transition again
	assert.ErrorIs(t, q.MarkCompleted(ctx, id), ErrJobNotFound)
}

func TestMarkCompleted(t *testing.T) {
	q := NewQueue(testutil.TestDB(t))
	ctx := context.Background()

	id, err := q.Enqueue(ctx, 1, "es", model.DefaultQueuePriority)
	require.NoError(t, err)
	_, err = q.DequeueNext(ctx)
	require.NoError(t, err)

	require.NoError(t, q.MarkCompleted(ctx, id))

	job, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusCompleted, job.Status)
	assert.Zero(t, job.Attempts)
	assert.NotNil(t, job.ProcessedAt)
}

func TestStats(t *testing.T) {
	q := NewQueue(testutil.TestDB(t))
	ctx := context.Background()

	a, err := q.Enqueue(ctx, 1, "de", 5)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, 2, "de", 5)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, 3, "de", 5)
	require.NoError(t, err)

	claimed, err := q.DequeueNext(ctx)
	require.NoError(t, err)
	require.Equal(t, a, claimed.ID)
	require.NoError(t, q.MarkCompleted(ctx, a))

	claimed, err = q.DequeueNext(ctx)
	require.NoError(t, err)
	require.NoError(t, q.MarkFailed(ctx, claimed.ID, "boom"))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStats{Queued: 1, Processing: 0, Completed: 1, Failed: 1}, stats)
}
