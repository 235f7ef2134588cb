package service

import (
	"errors"
	"fmt"

	"github.com/dreamwise/dreamwise/internal/repository"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateUsername = repository.ErrDuplicateUsername
	ErrDuplicateEmail    = repository.ErrDuplicateEmail
	ErrAccountNotFound   = repository.ErrAccountNotFound
	ErrAuthFailure       = errors.New("invalid email or password")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrExpiredCode       = errors.New("verification code has expired")
	ErrTooManyAttempts   = errors.New("too many verification attempts")
	ErrStorage           = errors.New("storage failure")
	ErrCorruptedHash     = errors.New("stored password hash is corrupted")
)

func validationErr(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrValidation, field, err)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}
