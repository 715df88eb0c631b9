package api

import (
	"context"
	"time"

	"github.com/bilgisen/folio/internal/contact"
	"github.com/bilgisen/folio/internal/content"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Updates is the part of the collection service the handlers need
type Updates interface {
	List(ctx context.Context) ([]*models.UpdateEntry, error)
	Get(ctx context.Context, slug string) (*models.UpdateEntry, error)
	Adjacent(ctx context.Context, slug string) (models.Adjacency, error)
	Invalidate()
}

// Now serves the "now" section
type Now interface {
	Get(ctx context.Context) (*models.NowEntry, error)
	Invalidate()
}

// Contact handles contact form submissions
type Contact interface {
	Submit(ctx context.Context, msg models.ContactMessage) contact.Result
}

// RenderCache is the rendered-HTML cache that admin invalidation clears
type RenderCache interface {
	Clear(ctx context.Context) error
}

type Handlers struct {
	updates Updates
	now     Now
	contact Contact
	render  RenderCache
	vocab   *models.Vocabulary
}

func NewHandlers(updates Updates, now Now, contact Contact, render RenderCache, vocab *models.Vocabulary) *Handlers {
	if vocab == nil {
		vocab = models.DefaultVocabulary()
	}
	return &Handlers{
		updates: updates,
		now:     now,
		contact: contact,
		render:  render,
		vocab:   vocab,
	}
}

// EntryView is an update entry flattened to one locale
type EntryView struct {
	Slug    string           `json:"slug"`
	Date    string           `json:"date"`
	Tag     models.UpdateTag `json:"tag"`
	Link    *models.Link     `json:"link,omitempty"`
	Locale  models.Locale    `json:"locale"`
	Title   string           `json:"title"`
	Summary string           `json:"summary"`
	Body    string           `json:"body"`
	Locales []models.Locale  `json:"locales"`
}

func viewOf(e *models.UpdateEntry, locale models.Locale) EntryView {
	fields, served := e.Localized(locale)
	return EntryView{
		Slug:    e.Slug,
		Date:    e.Date,
		Tag:     e.Tag,
		Link:    e.Link,
		Locale:  served,
		Title:   fields.Title,
		Summary: fields.Summary,
		Body:    fields.Body,
		Locales: e.Locales(),
	}
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ListUpdates handles GET /api/updates
func (h *Handlers) ListUpdates(c *fiber.Ctx) error {
	var tag *models.UpdateTag
	if raw := c.Query("tag"); raw != "" {
		if !h.vocab.Contains(raw) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown tag",
				"tags":  h.vocab.Tags(),
			})
		}
		t := models.UpdateTag(raw)
		tag = &t
	}
	locale := models.ParseLocale(c.Query("locale"))

	entries, err := h.updates.List(c.UserContext())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing updates")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load updates",
		})
	}

	filtered := content.FilterByTag(entries, tag)
	items := make([]EntryView, len(filtered))
	for i, e := range filtered {
		items[i] = viewOf(e, locale)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": len(items),
	})
}

// GetUpdate handles GET /api/updates/:slug
func (h *Handlers) GetUpdate(c *fiber.Ctx) error {
	slug := c.Params("slug")
	locale := models.ParseLocale(c.Query("locale"))
	ctx := c.UserContext()

	entry, err := h.updates.Get(ctx, slug)
	if err != nil {
		logger.Get().Error().Err(err).Str("slug", slug).Msg("Error resolving update")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load update",
		})
	}
	if entry == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Update not found",
		})
	}

	adjacent, err := h.updates.Adjacent(ctx, slug)
	if err != nil {
		// the entry itself is fine; navigation is optional
		logger.Get().Warn().Err(err).Str("slug", slug).Msg("Error computing adjacent updates")
	}

	return c.JSON(fiber.Map{
		"entry":    viewOf(entry, locale),
		"adjacent": adjacent,
	})
}

// GetNow handles GET /api/now
func (h *Handlers) GetNow(c *fiber.Ctx) error {
	now, err := h.now.Get(c.UserContext())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading now section")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load now section",
		})
	}

	fields, served := now.Localized(models.ParseLocale(c.Query("locale")))
	return c.JSON(fiber.Map{
		"updated":  now.Updated,
		"focus":    fields.Focus,
		"learning": fields.Learning,
		"locale":   served,
	})
}

// SubmitContact handles POST /api/contact
func (h *Handlers) SubmitContact(c *fiber.Ctx) error {
	// the body is JSON whatever Content-Type the client sent
	var msg models.ContactMessage
	if err := c.App().Config().JSONDecoder(c.Body(), &msg); err != nil {
		logger.Get().Warn().Err(err).Msg("Invalid contact request body")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": contact.MsgUnexpected,
		})
	}

	res := h.contact.Submit(c.UserContext(), msg)
	return c.Status(res.Status).JSON(res)
}

// InvalidateCache handles POST /api/admin/cache/invalidate
func (h *Handlers) InvalidateCache(c *fiber.Ctx) error {
	h.updates.Invalidate()
	h.now.Invalidate()

	cleared := c.QueryBool("render", false)
	if cleared && h.render != nil {
		if err := h.render.Clear(c.UserContext()); err != nil {
			logger.Get().Error().Err(err).Msg("Error clearing render cache")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to clear render cache",
			})
		}
	}

	logger.Get().Info().
		Str("ip", c.IP()).
		Bool("render", cleared).
		Msg("Content caches invalidated")

	return c.JSON(fiber.Map{
		"status": "invalidated",
		"render": cleared,
	})
}
