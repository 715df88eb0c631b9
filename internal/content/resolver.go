package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/storage"
	"github.com/rs/zerolog"
)

const markdownExt = ".md"

// Slug derives the entry identifier from its file name
func Slug(filename string) string {
	return strings.TrimSuffix(filename, markdownExt)
}

// CompanionName returns the file name holding the given locale's translation,
// e.g. launch.md -> launch.fr.md
func CompanionName(filename string, locale models.Locale) string {
	return Slug(filename) + "." + string(locale) + markdownExt
}

// IsCompanion reports whether filename is a secondary-locale file
func IsCompanion(filename string) bool {
	slug := Slug(filename)
	for _, l := range models.SecondaryLocales {
		if strings.HasSuffix(slug, "."+string(l)) {
			return true
		}
	}
	return false
}

// SplitDocument separates the frontmatter block from the markdown body
func SplitDocument(raw []byte, filename string) (map[string]any, []byte, error) {
	meta := make(map[string]any)
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, nil, newIntegrityError(filename, Violation{
			Field:   "frontmatter",
			Message: fmt.Sprintf("unreadable frontmatter: %v", err),
		})
	}
	return meta, body, nil
}

// Resolver turns raw content files into update entries
type Resolver struct {
	store     storage.Store
	validator *Validator
	renderer  *Renderer
	log       zerolog.Logger
}

func NewResolver(store storage.Store, validator *Validator, renderer *Renderer) *Resolver {
	return &Resolver{
		store:     store,
		validator: validator,
		renderer:  renderer,
		log:       logger.Component("resolver"),
	}
}

// ResolveFile reads and resolves one file. A missing file yields storage.ErrNotExist.
func (r *Resolver) ResolveFile(ctx context.Context, filename string) (*models.UpdateEntry, error) {
	raw, err := r.store.Read(ctx, filename)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, filename, raw)
}

// Resolve validates and renders a primary document and attaches any companion translations
func (r *Resolver) Resolve(ctx context.Context, filename string, raw []byte) (*models.UpdateEntry, error) {
	meta, body, err := SplitDocument(raw, filename)
	if err != nil {
		return nil, err
	}

	fm, err := r.validator.ValidateFrontmatter(meta, filename)
	if err != nil {
		return nil, err
	}

	html, err := r.renderer.Render(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", filename, err)
	}

	entry := &models.UpdateEntry{
		Slug: Slug(filename),
		Date: fm.Date,
		Tag:  fm.Tag,
		Link: fm.Link,
		Content: map[models.Locale]models.LocalizedFields{
			models.PrimaryLocale: {
				Title:   fm.Title,
				Summary: fm.Summary,
				Body:    html,
			},
		},
	}

	for _, locale := range models.SecondaryLocales {
		fields, ok, err := r.resolveCompanion(ctx, filename, locale)
		if err != nil {
			// A broken translation never takes the primary entry down with it
			r.log.Warn().
				Err(err).
				Str("file", filename).
				Str("locale", string(locale)).
				Msg("Ignoring malformed companion file")
			continue
		}
		if ok {
			entry.Content[locale] = fields
		}
	}

	return entry, nil
}

func (r *Resolver) resolveCompanion(ctx context.Context, filename string, locale models.Locale) (models.LocalizedFields, bool, error) {
	name := CompanionName(filename, locale)

	raw, err := r.store.Read(ctx, name)
	if errors.Is(err, storage.ErrNotExist) {
		return models.LocalizedFields{}, false, nil
	}
	if err != nil {
		return models.LocalizedFields{}, false, err
	}

	meta, body, err := SplitDocument(raw, name)
	if err != nil {
		return models.LocalizedFields{}, false, err
	}

	tr, err := r.validator.ValidateCompanion(meta, name)
	if err != nil {
		return models.LocalizedFields{}, false, err
	}

	html, err := r.renderer.Render(ctx, body)
	if err != nil {
		return models.LocalizedFields{}, false, fmt.Errorf("rendering %s: %w", name, err)
	}

	return models.LocalizedFields{
		Title:   tr.Title,
		Summary: tr.Summary,
		Body:    html,
	}, true, nil
}
