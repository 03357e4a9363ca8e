// Package validate provides a chainable Validator that collects field-level
// failures before returning a single ValidationError.
//
// Only the first failure per field is kept, matching how forms render one
// message next to each input.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Validator is not safe for concurrent use; create one per operation.
type Validator struct {
	errs  map[string]string
	order []string
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{errs: make(map[string]string)}
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value, message string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, message)
	}
	return v
}

// MinLen fails if the trimmed rune count is below min.
func (v *Validator) MinLen(field, value string, min int, message string) *Validator {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		v.add(field, message)
	}
	return v
}

// MaxLen fails if the rune count exceeds max.
func (v *Validator) MaxLen(field, value string, max int, message string) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, message)
	}
	return v
}

// Range fails if value is outside [min, max].
func (v *Validator) Range(field string, value, min, max float64) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %g and %g", min, max))
	}
	return v
}

// NotNumericOnly fails when the trimmed value is non-empty and made only of digits.
func (v *Validator) NotNumericOnly(field, value, message string) *Validator {
	if IsNumericOnly(value) {
		v.add(field, message)
	}
	return v
}

// Custom adds message against field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// FirstField is the first field that failed, in rule order.
func (v *Validator) FirstField() string {
	if len(v.order) == 0 {
		return ""
	}
	return v.order[0]
}

// Err returns a *ValidationError if any rule failed, otherwise nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	fields := make(map[string]string, len(v.errs))
	for k, msg := range v.errs {
		fields[k] = msg
	}
	return &apperrors.ValidationError{Fields: fields}
}

func (v *Validator) add(field, message string) {
	if v.errs == nil {
		v.errs = make(map[string]string)
	}
	if _, exists := v.errs[field]; exists {
		return
	}
	v.errs[field] = message
	v.order = append(v.order, field)
}

// IsNumericOnly reports whether the trimmed text is non-empty and only digits.
func IsNumericOnly(text string) bool {
	return digitsOnly.MatchString(strings.TrimSpace(text))
}
