package models

// Locale identifies a content language
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleFR Locale = "fr"

	// PrimaryLocale is always present on a resolved entry
	PrimaryLocale = LocaleEN
)

// SecondaryLocales have optional companion files next to the primary document.
var SecondaryLocales = []Locale{LocaleFR}

// ParseLocale maps a request value onto a supported locale, falling back to the primary one
func ParseLocale(s string) Locale {
	switch Locale(s) {
	case LocaleFR:
		return LocaleFR
	default:
		return PrimaryLocale
	}
}

// Link is an optional call-to-action attached to an entry
type Link struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// LocalizedFields holds the translatable part of an update entry
type LocalizedFields struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"` // rendered HTML
}

// UpdateEntry is a resolved, render-ready update.
// Entries are never modified after resolution; a changed source file yields a new value.
type UpdateEntry struct {
	Slug    string                     `json:"slug"`
	Date    string                     `json:"date"` // YYYY-MM
	Tag     UpdateTag                  `json:"tag"`
	Link    *Link                      `json:"link,omitempty"`
	Content map[Locale]LocalizedFields `json:"content"`
}

func (e *UpdateEntry) Title() string   { return e.Content[PrimaryLocale].Title }
func (e *UpdateEntry) Summary() string { return e.Content[PrimaryLocale].Summary }
func (e *UpdateEntry) Body() string    { return e.Content[PrimaryLocale].Body }

// HasLocale reports whether the entry carries fields for the given locale
func (e *UpdateEntry) HasLocale(l Locale) bool {
	_, ok := e.Content[l]
	return ok
}

// Localized returns the fields for l, or the primary locale's fields when l is missing.
// The second return value is the locale actually served.
func (e *UpdateEntry) Localized(l Locale) (LocalizedFields, Locale) {
	if fields, ok := e.Content[l]; ok {
		return fields, l
	}
	return e.Content[PrimaryLocale], PrimaryLocale
}

// Locales lists the available locales, primary first
func (e *UpdateEntry) Locales() []Locale {
	out := []Locale{PrimaryLocale}
	for _, l := range SecondaryLocales {
		if e.HasLocale(l) {
			out = append(out, l)
		}
	}
	return out
}

// EntryRef is a lightweight pointer to a neighbouring entry
type EntryRef struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Adjacency holds the newer (Prev) and older (Next) neighbours of an entry
type Adjacency struct {
	Prev *EntryRef `json:"prev"`
	Next *EntryRef `json:"next"`
}
