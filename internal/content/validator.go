package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bilgisen/folio/internal/models"
	"github.com/bilgisen/folio/internal/utils"
	"github.com/go-playground/validator/v10"
)

// fieldOrder fixes the order violations are reported in
var fieldOrder = map[string]int{
	"frontmatter": 0,
	"title":       1,
	"date":        2,
	"tag":         3,
	"summary":     4,
	"link":        5,
}

const missingValue = "<missing>"

type primaryFields struct {
	Title   string `validate:"nonblank"`
	Date    string `validate:"yearmonth"`
	Tag     string `validate:"updatetag"`
	Summary string `validate:"nonblank"`
}

type linkFields struct {
	URL   string `validate:"nonblank"`
	Label string `validate:"nonblank"`
}

type companionFields struct {
	Title   string `validate:"nonblank"`
	Summary string `validate:"nonblank"`
}

// Frontmatter is the validated metadata of a primary document
type Frontmatter struct {
	Title   string
	Date    string
	Tag     models.UpdateTag
	Summary string
	Link    *models.Link
}

// Translation is the validated metadata of a companion document
type Translation struct {
	Title   string
	Summary string
}

// Validator checks raw frontmatter against the entry contract
type Validator struct {
	validate *validator.Validate
	vocab    *models.Vocabulary
}

func NewValidator(vocab *models.Vocabulary) *Validator {
	if vocab == nil {
		vocab = models.DefaultVocabulary()
	}

	v := validator.New()
	utils.RegisterCommon(v)
	_ = v.RegisterValidation("updatetag", func(fl validator.FieldLevel) bool {
		return vocab.Contains(fl.Field().String())
	})

	return &Validator{validate: v, vocab: vocab}
}

// Vocabulary returns the tag set the validator enforces
func (v *Validator) Vocabulary() *models.Vocabulary {
	return v.vocab
}

// ValidateFrontmatter checks every rule and reports all violations at once
func (v *Validator) ValidateFrontmatter(meta map[string]any, filename string) (*Frontmatter, error) {
	c := newChecker(meta, v.violation)
	fields := primaryFields{
		Title:   c.str("title"),
		Date:    c.str("date"),
		Tag:     c.str("tag"),
		Summary: c.str("summary"),
	}
	if err := v.structViolations(fields, c); err != nil {
		return nil, err
	}

	var link *models.Link
	if raw, present := meta["link"]; present {
		link = v.checkLink(raw, c)
	}

	if len(c.violations) > 0 {
		return nil, newIntegrityError(filename, v.sorted(c.violations)...)
	}

	return &Frontmatter{
		Title:   fields.Title,
		Date:    fields.Date,
		Tag:     models.UpdateTag(fields.Tag),
		Summary: fields.Summary,
		Link:    link,
	}, nil
}

// ValidateCompanion checks a secondary-locale document, which only carries
// the translated title and summary
func (v *Validator) ValidateCompanion(meta map[string]any, filename string) (*Translation, error) {
	c := newChecker(meta, v.violation)
	fields := companionFields{
		Title:   c.str("title"),
		Summary: c.str("summary"),
	}
	if err := v.structViolations(fields, c); err != nil {
		return nil, err
	}
	if len(c.violations) > 0 {
		return nil, newIntegrityError(filename, v.sorted(c.violations)...)
	}
	return &Translation{Title: fields.Title, Summary: fields.Summary}, nil
}

func (v *Validator) structViolations(s any, c *checker) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("frontmatter validation: %w", err)
	}

	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.StructField())
		if c.typeFailed[field] {
			continue
		}
		c.add(v.violation(field, fmt.Sprint(fe.Value())))
	}
	return nil
}

func (v *Validator) checkLink(raw any, c *checker) *models.Link {
	bad := v.violation("link", fmt.Sprint(raw))

	m, ok := stringMap(raw)
	if !ok {
		c.add(bad)
		return nil
	}
	url, urlOK := m["url"].(string)
	label, labelOK := m["label"].(string)
	if !urlOK || !labelOK {
		c.add(bad)
		return nil
	}
	if err := v.validate.Struct(linkFields{URL: url, Label: label}); err != nil {
		c.add(bad)
		return nil
	}
	return &models.Link{URL: url, Label: label}
}

func (v *Validator) violation(field, value string) Violation {
	out := Violation{Field: field, Value: value}
	switch field {
	case "date":
		if utils.IsYearMonthPattern(value) {
			out.Message = fmt.Sprintf(`invalid "date": month out of range in %q`, value)
		} else {
			out.Message = fmt.Sprintf(`invalid "date": expected YYYY-MM format, got %q`, value)
		}
	case "tag":
		out.Message = fmt.Sprintf("invalid tag '%s', valid tags: %s", value, v.vocab)
	case "link":
		out.Message = `invalid "link": expected { url, label } with non-empty strings`
	default:
		out.Message = fmt.Sprintf("missing or empty %q", field)
	}
	return out
}

func (v *Validator) sorted(violations []Violation) []Violation {
	sort.SliceStable(violations, func(i, j int) bool {
		return fieldOrder[violations[i].Field] < fieldOrder[violations[j].Field]
	})
	return violations
}

// checker collects type violations while pulling string fields out of raw frontmatter
type checker struct {
	meta       map[string]any
	describe   func(field, value string) Violation
	typeFailed map[string]bool
	violations []Violation
}

func newChecker(meta map[string]any, describe func(field, value string) Violation) *checker {
	return &checker{meta: meta, describe: describe, typeFailed: make(map[string]bool)}
}

func (c *checker) str(field string) string {
	raw, present := c.meta[field]
	s, ok := raw.(string)
	if !ok {
		value := missingValue
		if present {
			value = fmt.Sprint(raw)
		}
		c.typeFailed[field] = true
		c.add(c.describe(field, value))
	}
	return s
}

func (c *checker) add(v Violation) {
	c.violations = append(c.violations, v)
}

func stringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	}
	return nil, false
}
