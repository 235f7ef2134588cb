package validation

import (
	"errors"
	"unicode"
)

const (
	PasswordMinLength = 8
	// bcrypt silently truncates input beyond 72 bytes
	PasswordMaxLength = 72
)

// ValidatePassword validates password shape: 8 to 72 bytes with at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > PasswordMaxLength {
		return errors.New("password must not exceed 72 bytes")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}

	return nil
}
