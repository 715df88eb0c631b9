package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	yearMonthRegex  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	basicEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NonBlank fails on strings that are empty after trimming whitespace
func NonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// BasicEmail accepts local@domain.tld with no whitespace and a single @
func BasicEmail(fl validator.FieldLevel) bool {
	return IsBasicEmail(fl.Field().String())
}

func IsBasicEmail(s string) bool {
	return basicEmailRegex.MatchString(s)
}

// YearMonth accepts YYYY-MM with a month between 01 and 12
func YearMonth(fl validator.FieldLevel) bool {
	return IsYearMonth(fl.Field().String())
}

func IsYearMonth(s string) bool {
	if !yearMonthRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// IsYearMonthPattern checks only the shape, not the calendar
func IsYearMonthPattern(s string) bool {
	return yearMonthRegex.MatchString(s)
}

// RegisterCommon adds the shared custom tags to v
func RegisterCommon(v *validator.Validate) {
	_ = v.RegisterValidation("nonblank", NonBlank)
	_ = v.RegisterValidation("basicemail", BasicEmail)
	_ = v.RegisterValidation("yearmonth", YearMonth)
}
