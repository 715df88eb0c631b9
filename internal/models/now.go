package models

// NowFields is the translatable part of the "now" section
type NowFields struct {
	Focus    string `json:"focus"`
	Learning string `json:"learning"`
}

// NowEntry describes what the site owner is currently working on
type NowEntry struct {
	Updated string               `json:"updated"` // YYYY-MM
	Content map[Locale]NowFields `json:"content"`
}

// Localized returns the fields for l, falling back to the primary locale
func (n *NowEntry) Localized(l Locale) (NowFields, Locale) {
	if fields, ok := n.Content[l]; ok {
		return fields, l
	}
	return n.Content[PrimaryLocale], PrimaryLocale
}
