package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/repository"
	"github.com/dreamwise/dreamwise/internal/validation"
)

// maxSwapRounds bounds how often Verify re-reads a code after losing a
// compare-and-swap to a concurrent submission.
const maxSwapRounds = 3

var codeSpace = big.NewInt(1_000_000)

type VerificationService struct {
	codeRepository repository.VerificationCodeRepository
	ttl            time.Duration
	maxAttempts    int
	now            func() time.Time
}

func NewVerificationService(codeRepository repository.VerificationCodeRepository, ttl time.Duration, maxAttempts int) *VerificationService {
	if ttl <= 0 {
		ttl = model.DefaultCodeTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = model.DefaultMaxAttempts
	}

	return &VerificationService{
		codeRepository: codeRepository,
		ttl:            ttl,
		maxAttempts:    maxAttempts,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// TTL is the lifetime given to codes issued without an explicit ttl.
func (s *VerificationService) TTL() time.Duration {
	return s.ttl
}

// Issue replaces any unused code for (email, purpose) with a fresh one and
// returns it. Delivering the code is up to the caller. A ttl of zero uses
// the service default.
func (s *VerificationService) Issue(ctx context.Context, email string, purpose model.Purpose, ttl time.Duration) (*model.VerificationCode, error) {
	email = validation.NormalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, validationErr("email", err)
	}
	if !purpose.Valid() {
		return nil, validationErr("purpose", fmt.Errorf("unknown purpose %q", purpose))
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now()
	record := &model.VerificationCode{
		ID:          uuid.NewString(),
		Email:       email,
		Code:        code,
		Purpose:     purpose,
		MaxAttempts: s.maxAttempts,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}

	err = s.codeRepository.Replace(ctx, record)
	if err != nil {
		return nil, storageErr("store verification code", err)
	}

	slog.Info("verification code issued", "email", email, "purpose", purpose, "expires_at", record.ExpiresAt)
	return record, nil
}

// Verify checks a submitted code against the latest unused code for the
// pair. On success the code is marked used and returned.
func (s *VerificationService) Verify(ctx context.Context, email, submitted string, purpose model.Purpose) (*model.VerificationCode, error) {
	email = validation.NormalizeEmail(email)
	if !purpose.Valid() {
		return nil, validationErr("purpose", fmt.Errorf("unknown purpose %q", purpose))
	}

	for round := 0; round < maxSwapRounds; round++ {
		record, err := s.codeRepository.Latest(ctx, email, purpose)
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, ErrInvalidCode
		}
		if err != nil {
			return nil, storageErr("get verification code", err)
		}

		now := s.now()
		if record.IsExpired(now) {
			return nil, ErrExpiredCode
		}
		if record.IsLocked() {
			return nil, ErrTooManyAttempts
		}

		if !codesEqual(record.Code, submitted) {
			moved, err := s.codeRepository.IncrementAttempts(ctx, record.ID)
			if err != nil {
				return nil, storageErr("record failed attempt", err)
			}
			if moved {
				slog.Info("verification code mismatch", "email", email, "purpose", purpose, "attempts", record.Attempts+1)
				return nil, ErrInvalidCode
			}
			continue
		}

		used, err := s.codeRepository.MarkUsed(ctx, record.ID, now)
		if err != nil {
			return nil, storageErr("consume verification code", err)
		}
		if used {
			record.IsUsed = true
			record.UsedAt = &now
			slog.Info("verification code accepted", "email", email, "purpose", purpose)
			return record, nil
		}
	}

	return nil, ErrInvalidCode
}

// CleanupExpired deletes every code past its expiry, used or not.
func (s *VerificationService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.codeRepository.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, storageErr("delete expired codes", err)
	}
	return n, nil
}

// generateCode returns a uniformly random 6-digit code, leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", model.CodeLength, n.Int64()), nil
}

func codesEqual(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
