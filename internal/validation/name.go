package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateName validates the applicant's full name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("full name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("full name is too long (max 100 characters)")
	}

	return nil
}

// ValidateText validates a required free-text field such as the geographic area
func ValidateText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return fmt.Errorf("%s is required", field)
	}

	if len(trimmed) > max {
		return fmt.Errorf("%s is too long (max %d characters)", field, max)
	}

	return nil
}

// ValidateLanguage accepts short language codes like "es" or "en-GB"
func ValidateLanguage(language string) error {
	if len(language) > 10 {
		return errors.New("language is too long (max 10 characters)")
	}
	for _, r := range language {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_') {
			return errors.New("language must be a language code such as \"es\" or \"en\"")
		}
	}
	return nil
}
