package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxDisplayName = 100
	maxBio         = 1000
	maxShortField  = 200
	maxInterests   = 20
	maxInterest    = 50
)

// ValidateProfileText validates the free-form profile fields.
func ValidateProfileText(displayName, bio, spiritualBackground, dreamingExperience string) error {
	if len(strings.TrimSpace(displayName)) > maxDisplayName {
		return errors.New("display name is too long (max 100 characters)")
	}
	if len(bio) > maxBio {
		return errors.New("bio is too long (max 1000 characters)")
	}
	if len(spiritualBackground) > maxShortField || len(dreamingExperience) > maxShortField {
		return errors.New("profile field is too long (max 200 characters)")
	}
	return nil
}

// ValidateInterests limits the number and length of interests.
func ValidateInterests(interests []string) error {
	if len(interests) > maxInterests {
		return fmt.Errorf("too many interests (max %d)", maxInterests)
	}
	for _, interest := range interests {
		trimmed := strings.TrimSpace(interest)
		if trimmed == "" {
			return errors.New("interest must not be empty")
		}
		if len(trimmed) > maxInterest {
			return fmt.Errorf("interest is too long (max %d characters)", maxInterest)
		}
	}
	return nil
}
