package model

import (
	"time"
)

type Purpose string

const (
	PurposeRegistration   Purpose = "registration"
	PurposePasswordReset  Purpose = "password_reset"
	PurposePasswordChange Purpose = "password_change"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposePasswordChange:
		return true
	}
	return false
}

const (
	CodeLength         = 6
	DefaultMaxAttempts = 3
	DefaultCodeTTL     = 10 * time.Minute
)

type VerificationCode struct {
	ID          string     `db:"id"`
	Email       string     `db:"email"`
	Code        string     `db:"code"`
	Purpose     Purpose    `db:"purpose"`
	IsUsed      bool       `db:"is_used"`
	Attempts    int        `db:"attempts"`
	MaxAttempts int        `db:"max_attempts"`
	ExpiresAt   time.Time  `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UsedAt      *time.Time `db:"used_at"`
}

func (c *VerificationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c *VerificationCode) IsLocked() bool {
	return c.Attempts >= c.MaxAttempts
}
