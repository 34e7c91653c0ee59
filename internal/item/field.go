package item

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxFieldNameLength bounds attribute names accepted for updates.
const MaxFieldNameLength = 255

// ErrInvalidField is returned when an update names an unusable attribute.
var ErrInvalidField = errors.New("invalid field name")

// ValidateFieldName checks a single-field update target. Reserved words are
// allowed; backends address fields through placeholders, never by splicing
// the name into expression syntax.
func ValidateFieldName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidField)
	case len(name) > MaxFieldNameLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidField, MaxFieldNameLength)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: not valid utf-8", ErrInvalidField)
	case name == KeyAttribute:
		return fmt.Errorf("%w: %s is the primary key", ErrInvalidField, KeyAttribute)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: contains control characters", ErrInvalidField)
		}
	}
	return nil
}
