package content

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bilgisen/folio/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	r := NewRenderer()

	html, err := r.Render(context.Background(), []byte("# Title\n\nHello **world**, see [docs](https://example.com).\n"))
	require.NoError(t, err)

	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<strong>world</strong>")
	assert.Contains(t, html, `<a href="https://example.com">docs</a>`)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer()
	body := []byte("## Steps\n\n1. one\n2. two\n\n```go\nfunc main() { fmt.Println(\"hi\") }\n```\n")

	first, err := r.Render(context.Background(), body)
	require.NoError(t, err)
	second, err := NewRenderer().Render(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderHighlightsCodeWithBackground(t *testing.T) {
	r := NewRenderer()

	html, err := r.Render(context.Background(), []byte("```go\npackage main\n```\n"))
	require.NoError(t, err)

	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "background-color")
}

func TestRenderDropsRawHTML(t *testing.T) {
	r := NewRenderer()

	html, err := r.Render(context.Background(), []byte("<script>alert(1)</script>\n\ntext\n"))
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<p>text</p>")
}

type countingCache struct {
	*cache.MemoryClient
	sets atomic.Int32
}

func (c *countingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.sets.Add(1)
	return c.MemoryClient.Set(ctx, key, value, ttl)
}

func TestRenderUsesCache(t *testing.T) {
	c := &countingCache{MemoryClient: cache.NewMemoryClient()}
	r := NewRenderer(WithRenderCache(c, time.Hour))
	body := []byte("cached *body*")

	first, err := r.Render(context.Background(), body)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), c.sets.Load())

	_, err = r.Render(context.Background(), []byte("other"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), c.sets.Load())
}
