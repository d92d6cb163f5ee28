// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/testutil"
)

func TestMemoryCacheBasic(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, c.Delete(ctx, "key"))
	_, err = c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	value := []byte("original")
	require.NoError(t, c.Set(ctx, "key", value, 0))
	value[0] = 'X'

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestMemoryCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear(ctx))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := New(context.Background(), Options{DefaultTTL: time.Minute})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}

func TestLanguagesCaching(t *testing.T) {
	ctx := context.Background()
	db := testutil.TestDB(t)
	registry := language.NewRegistry(db)

	_, err := registry.Add(ctx, "en", "English", "English", "us")
	require.NoError(t, err)
	_, err = registry.Add(ctx, "de", "German", "Deutsch", "de")
	require.NoError(t, err)

	c := NewMemory(time.Hour)
	langs := NewLanguages(c, registry)

	active, err := langs.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	def, err := langs.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", def.Code)

	// Mutate behind the cache: stale data is served until invalidation.
	require.NoError(t, registry.SetActive(ctx, "de", false))

	active, err = langs.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	require.NoError(t, langs.Invalidate(ctx))

	active, err = langs.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "en", active[0].Code)
}

func TestLanguagesCorruptEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	db := testutil.TestDB(t)
	registry := language.NewRegistry(db)
	_, err := registry.Add(ctx, "en", "English", "English", "us")
	require.NoError(t, err)

	c := NewMemory(time.Hour)
	require.NoError(t, c.Set(ctx, "languages:active", []byte("not json"), 0))

	langs := NewLanguages(c, registry)
	active, err := langs.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
