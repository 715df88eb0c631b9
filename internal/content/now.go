package content

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/bilgisen/folio/internal/cache"
	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/storage"
	"github.com/bilgisen/folio/internal/utils"
)

// nowDocument is the frontmatter layout of now.md:
//
//	updated: 2025-06
//	focus:
//	  en: Shipping the scheduler beta
//	  fr: Lancer la beta du planificateur
//	learning:
//	  en: Go generics
type nowDocument struct {
	Updated  string            `yaml:"updated"`
	Focus    map[string]string `yaml:"focus"`
	Learning map[string]string `yaml:"learning"`
}

// ParseNow reads the "now" section from a document's frontmatter
func ParseNow(raw []byte, filename string) (*models.NowEntry, error) {
	var doc nowDocument
	if _, err := frontmatter.Parse(bytes.NewReader(raw), &doc); err != nil {
		return nil, newIntegrityError(filename, Violation{
			Field:   "frontmatter",
			Message: fmt.Sprintf("unreadable frontmatter: %v", err),
		})
	}

	var violations []Violation
	if !utils.IsYearMonth(doc.Updated) {
		violations = append(violations, Violation{
			Field:   "updated",
			Value:   doc.Updated,
			Message: fmt.Sprintf(`invalid "updated": expected YYYY-MM format, got %q`, doc.Updated),
		})
	}

	entry := &models.NowEntry{
		Updated: doc.Updated,
		Content: make(map[models.Locale]models.NowFields),
	}

	locales := append([]models.Locale{models.PrimaryLocale}, models.SecondaryLocales...)
	for _, l := range locales {
		fields := models.NowFields{
			Focus:    doc.Focus[string(l)],
			Learning: doc.Learning[string(l)],
		}
		if fields.Focus == "" && fields.Learning == "" {
			continue
		}
		entry.Content[l] = fields
	}

	primary := entry.Content[models.PrimaryLocale]
	if primary.Focus == "" {
		violations = append(violations, Violation{Field: "focus", Message: `missing "focus.en"`})
	}
	if primary.Learning == "" {
		violations = append(violations, Violation{Field: "learning", Message: `missing "learning.en"`})
	}

	if len(violations) > 0 {
		return nil, newIntegrityError(filename, violations...)
	}
	return entry, nil
}

// NowService serves the cached "now" section
type NowService struct {
	store    storage.Store
	filename string
	snapshot *cache.Snapshot[*models.NowEntry]
}

func NewNowService(store storage.Store, filename string, ttl time.Duration) *NowService {
	n := &NowService{store: store, filename: filename}
	n.snapshot = cache.NewSnapshot(ttl, n.load)
	return n
}

// Get returns the current "now" section
func (n *NowService) Get(ctx context.Context) (*models.NowEntry, error) {
	return n.snapshot.Get(ctx)
}

// Invalidate drops the cached section
func (n *NowService) Invalidate() {
	n.snapshot.Invalidate()
}

func (n *NowService) load(ctx context.Context) (*models.NowEntry, error) {
	raw, err := n.store.Read(ctx, n.filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", n.filename, err)
	}
	return ParseNow(raw, n.filename)
}
