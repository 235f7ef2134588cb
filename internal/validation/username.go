package validation

import (
	"errors"
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateUsername checks length (3-30) and the allowed alphabet (letters, digits, underscore).
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 30 {
		return errors.New("username must be between 3 and 30 characters")
	}

	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, numbers and underscores")
	}

	return nil
}
