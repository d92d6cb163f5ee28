package resolver

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/polyglot/internal/content"
	"github.com/olegiv/polyglot/internal/language"
	"github.com/olegiv/polyglot/internal/model"
	"github.com/olegiv/polyglot/internal/translation"
	"github.com/olegiv/polyglot/internal/testutil"
)

type fixture struct {
	resolver *Resolver
	registry *language.Registry
	store    *translation.Store
	content  *content.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.TestDB(t)
	ctx := context.Background()

	f := &fixture{
		registry: language.NewRegistry(db),
		store:    translation.NewStore(db),
		content:  content.NewStore(db),
	}
	f.resolver = New(f.registry, f.store, f.content)

	_, err := f.registry.Add(ctx, "en", "English", "", "gb")
	require.NoError(t, err)
	_, err = f.registry.Add(ctx, "fr", "French", "Français", "fr")
	require.NoError(t, err)
	_, err = f.registry.Add(ctx, "de", "German", "Deutsch", "de")
	require.NoError(t, err)

	return f
}

func TestDetectLanguagePrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		path     string
		query    url.Values
		cookie   string
		expected string
	}{
		{
			name:     "path segment wins",
			path:     "/fr/about/",
			query:    url.Values{"lang": {"de"}},
			cookie:   "de",
			expected: "fr",
		},
		{
			name:     "unknown path segment falls through to query",
			path:     "/xx/about/",
			query:    url.Values{"lang": {"de"}},
			expected: "de",
		},
		{
			name:     "query falls through to cookie",
			path:     "/about/",
			query:    url.Values{"lang": {"xx"}},
			cookie:   "de",
			expected: "de",
		},
		{
			name:     "everything unknown falls back to default",
			path:     "/about/",
			query:    url.Values{"lang": {"xx"}},
			cookie:   "yy",
			expected: "en",
		},
		{
			name:     "empty sources fall back to default",
			path:     "/",
			expected: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.resolver.DetectLanguage(ctx, tt.path, tt.query, tt.cookie)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectLanguageIgnoresInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.registry.SetActive(ctx, "de", false))

	got, err := f.resolver.DetectLanguage(ctx, "/de/about/", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "en", got)
}

func TestResolveContentTranslatedSlugFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.content.Create(ctx, "About Us", "<p>body</p>", "", "about-us")
	require.NoError(t, err)
	require.NoError(t, f.store.Save(ctx, item.ID, "de",
		model.TranslationFields{Slug: "ueber-uns"}, model.StatusAuto, "m"))

	got, err := f.resolver.ResolveContent(ctx, "/ueber-uns/", "de")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	// Untranslated items stay reachable through the original slug
	got, err = f.resolver.ResolveContent(ctx, "/about-us/", "fr")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = f.resolver.ResolveContent(ctx, "/missing/", "de")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestBuildURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.content.Create(ctx, "About Us", "", "", "about-us")
	require.NoError(t, err)
	require.NoError(t, f.store.Save(ctx, item.ID, "de",
		model.TranslationFields{Slug: "ueber-uns"}, model.StatusAuto, "m"))

	u, err := f.resolver.BuildURL(ctx, "en", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "/about-us/", u)

	u, err = f.resolver.BuildURL(ctx, "de", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "/de/ueber-uns/", u)

	// No translated slug: language prefix with original slug
	u, err = f.resolver.BuildURL(ctx, "fr", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "/fr/about-us/", u)
}

func TestCanonicalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target, redirect, err := f.resolver.Canonicalize(ctx, "/en/", "en")
	require.NoError(t, err)
	assert.True(t, redirect)
	assert.Equal(t, "/", target)

	target, redirect, err = f.resolver.Canonicalize(ctx, "/en/about-us/", "en")
	require.NoError(t, err)
	assert.True(t, redirect)
	assert.Equal(t, "/about-us/", target)

	// Non-default prefixed paths stay
	_, redirect, err = f.resolver.Canonicalize(ctx, "/de/", "de")
	require.NoError(t, err)
	assert.False(t, redirect)

	// Unprefixed default paths stay
	_, redirect, err = f.resolver.Canonicalize(ctx, "/about-us/", "en")
	require.NoError(t, err)
	assert.False(t, redirect)

	// A slug that merely starts with the default code is not a prefix
	_, redirect, err = f.resolver.Canonicalize(ctx, "/energy/", "en")
	require.NoError(t, err)
	assert.False(t, redirect)
}

func TestLanguageContext(t *testing.T) {
	ctx := WithLanguage(context.Background(), "de")
	assert.Equal(t, "de", LanguageFromContext(ctx))
	assert.Equal(t, "", LanguageFromContext(context.Background()))
}
