package content

import (
	"context"
	"testing"

	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const launchDoc = `---
title: Launch
date: 2024-03
tag: project-launch
summary: We launched.
link:
  url: https://example.com
  label: Visit
---
Hello **world**
`

func TestSlugAndCompanionNames(t *testing.T) {
	assert.Equal(t, "launch", Slug("launch.md"))
	assert.Equal(t, "launch.fr.md", CompanionName("launch.md", models.LocaleFR))
	assert.True(t, IsCompanion("launch.fr.md"))
	assert.False(t, IsCompanion("launch.md"))
	assert.False(t, IsCompanion("french.md"))
}

func TestResolvePrimaryOnly(t *testing.T) {
	store := newMemStore(nil)
	r := newTestResolver(store)

	entry, err := r.Resolve(context.Background(), "launch.md", []byte(launchDoc))
	require.NoError(t, err)

	assert.Equal(t, "launch", entry.Slug)
	assert.Equal(t, "2024-03", entry.Date)
	assert.Equal(t, models.TagProjectLaunch, entry.Tag)
	assert.Equal(t, "Launch", entry.Title())
	assert.Equal(t, "We launched.", entry.Summary())
	assert.Contains(t, entry.Body(), "<strong>world</strong>")
	require.NotNil(t, entry.Link)
	assert.Equal(t, "Visit", entry.Link.Label)

	assert.False(t, entry.HasLocale(models.LocaleFR))
	fields, served := entry.Localized(models.LocaleFR)
	assert.Equal(t, models.LocaleEN, served)
	assert.Equal(t, "Launch", fields.Title)
}

func TestResolveWithCompanion(t *testing.T) {
	store := newMemStore(map[string]string{
		"launch.fr.md": companion("Lancement", "Nous avons lancé.", "Bonjour *monde*"),
	})
	r := newTestResolver(store)

	entry, err := r.Resolve(context.Background(), "launch.md", []byte(launchDoc))
	require.NoError(t, err)

	require.True(t, entry.HasLocale(models.LocaleFR))
	fr, served := entry.Localized(models.LocaleFR)
	assert.Equal(t, models.LocaleFR, served)
	assert.Equal(t, "Lancement", fr.Title)
	assert.Equal(t, "Nous avons lancé.", fr.Summary)
	assert.Contains(t, fr.Body, "<em>monde</em>")
	assert.Equal(t, []models.Locale{models.LocaleEN, models.LocaleFR}, entry.Locales())

	// the primary locale is untouched
	assert.Equal(t, "Launch", entry.Title())
}

func TestResolveToleratesMalformedCompanion(t *testing.T) {
	store := newMemStore(map[string]string{
		"launch.fr.md": "---\ntitle: \"\"\n---\nvide\n",
	})
	r := newTestResolver(store)

	entry, err := r.Resolve(context.Background(), "launch.md", []byte(launchDoc))
	require.NoError(t, err)
	assert.False(t, entry.HasLocale(models.LocaleFR))
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newTestResolver(newMemStore(nil))
	raw := []byte(launchDoc + "\n```js\nconsole.log(1)\n```\n")

	a, err := r.Resolve(context.Background(), "launch.md", raw)
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), "launch.md", raw)
	require.NoError(t, err)

	assert.Equal(t, a.Body(), b.Body())
}

func TestResolveRejectsInvalidPrimary(t *testing.T) {
	r := newTestResolver(newMemStore(nil))

	_, err := r.Resolve(context.Background(), "bad.md", []byte(doc("Bad", "2024-03", "unknown", "s", "body")))
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "bad.md", ie.File)
	assert.Contains(t, err.Error(), "'unknown'")

	_, err = r.Resolve(context.Background(), "late.md", []byte(doc("Late", "March 2024", "learning", "s", "body")))
	require.ErrorAs(t, err, &ie)
	violation, ok := ie.Field("date")
	require.True(t, ok)
	assert.Equal(t, "March 2024", violation.Value)
}

func TestResolveWithoutFrontmatterFails(t *testing.T) {
	r := newTestResolver(newMemStore(nil))

	_, err := r.Resolve(context.Background(), "plain.md", []byte("just markdown\n"))
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	_, ok := ie.Field("title")
	assert.True(t, ok)
}

func TestResolveFileMissing(t *testing.T) {
	r := newTestResolver(newMemStore(nil))

	_, err := r.ResolveFile(context.Background(), "ghost.md")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}
