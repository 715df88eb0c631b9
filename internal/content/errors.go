package content

import (
	"fmt"
	"strings"
)

// Violation is a single broken frontmatter rule
type Violation struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// IntegrityError reports malformed frontmatter in one content file.
// It is fatal for that entry and points at an authoring mistake.
type IntegrityError struct {
	File       string
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("content integrity error in %s: %s", e.File, strings.Join(msgs, "; "))
}

// Field returns the violation for name, if any
func (e *IntegrityError) Field(name string) (Violation, bool) {
	for _, v := range e.Violations {
		if v.Field == name {
			return v, true
		}
	}
	return Violation{}, false
}

func newIntegrityError(file string, violations ...Violation) *IntegrityError {
	return &IntegrityError{File: file, Violations: violations}
}
