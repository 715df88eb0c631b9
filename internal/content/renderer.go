package content

import (
	"bytes"
	"context"
	"fmt"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/bilgisen/folio/internal/cache"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/utils"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// CodeTheme is the chroma style applied to fenced code blocks
const CodeTheme = "github-dark"

// rendererVersion is folded into cache keys; bump it when the pipeline output changes
const rendererVersion = "v1"

// Renderer converts markdown bodies to HTML.
// Output depends only on the input, so results may be cached by content hash.
// Raw HTML in the source is dropped; content is trusted but not passed through.
type Renderer struct {
	md    goldmark.Markdown
	cache cache.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithRenderCache stores rendered HTML in c for ttl
func WithRenderCache(c cache.Client, ttl time.Duration) RendererOption {
	return func(r *Renderer) {
		r.cache = c
		r.ttl = ttl
	}
}

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(CodeTheme),
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(false),
						chromahtml.TabWidth(4),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		log: logger.Component("renderer"),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the HTML for a markdown body
func (r *Renderer) Render(ctx context.Context, body []byte) (string, error) {
	key := utils.HashBytes(body, rendererVersion, CodeTheme)

	if r.cache != nil {
		html, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.Warn().Err(err).Msg("render cache lookup failed")
		} else if ok {
			return html, nil
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	html := buf.String()

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, html, r.ttl); err != nil {
			r.log.Warn().Err(err).Msg("render cache store failed")
		}
	}

	return html, nil
}
