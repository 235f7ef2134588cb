package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dreamwise/dreamwise/internal/db"
	"github.com/dreamwise/dreamwise/internal/model"
)

const codeColumns = `id, email, code, purpose, is_used, attempts, max_attempts, expires_at, created_at, used_at`

type VerificationCodeRepository interface {
	Replace(ctx context.Context, code *model.VerificationCode) error
	Latest(ctx context.Context, email string, purpose model.Purpose) (*model.VerificationCode, error)
	ByID(ctx context.Context, id string) (*model.VerificationCode, error)
	MarkUsed(ctx context.Context, id string, now time.Time) (bool, error)
	IncrementAttempts(ctx context.Context, id string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type verificationCodeRepository struct {
	db *sqlx.DB
}

func NewVerificationCodeRepository(db *sqlx.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

// Replace removes every unused code for the (email, purpose) pair and stores
// the new one in a single transaction. The partial unique index on unused
// codes turns a concurrent insert for the same pair into an overwrite, so at
// most one unused code per pair survives even when two issues race.
func (r *verificationCodeRepository) Replace(ctx context.Context, c *model.VerificationCode) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM verification_codes WHERE email = $1 AND purpose = $2 AND is_used = FALSE`,
			c.Email, c.Purpose,
		)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO verification_codes (` + codeColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (email, purpose) WHERE is_used = FALSE DO UPDATE SET
				id = excluded.id,
				code = excluded.code,
				attempts = excluded.attempts,
				max_attempts = excluded.max_attempts,
				expires_at = excluded.expires_at,
				created_at = excluded.created_at,
				used_at = NULL
		`
		_, err = tx.ExecContext(ctx, query,
			c.ID, c.Email, c.Code, c.Purpose, c.IsUsed, c.Attempts,
			c.MaxAttempts, c.ExpiresAt, c.CreatedAt, c.UsedAt,
		)
		return err
	})
}

// Latest returns the most recently issued unused code for the pair.
func (r *verificationCodeRepository) Latest(ctx context.Context, email string, purpose model.Purpose) (*model.VerificationCode, error) {
	var c model.VerificationCode
	query := `
		SELECT ` + codeColumns + `
		FROM verification_codes
		WHERE email = $1 AND purpose = $2 AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &c, query, email, purpose)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *verificationCodeRepository) ByID(ctx context.Context, id string) (*model.VerificationCode, error) {
	var c model.VerificationCode
	query := `SELECT ` + codeColumns + ` FROM verification_codes WHERE id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// MarkUsed consumes the code if it is still usable. It is a single
// conditional UPDATE, so of two concurrent submissions only one can win.
// The boolean reports whether this call consumed the code.
func (r *verificationCodeRepository) MarkUsed(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE verification_codes
		SET is_used = TRUE, used_at = $1
		WHERE id = $2
		AND is_used = FALSE
		AND attempts < max_attempts
		AND expires_at > $3
	`
	return r.execSwap(ctx, query, now, id, now)
}

// IncrementAttempts records a failed attempt unless the code is already used
// or locked. The boolean reports whether the counter moved.
func (r *verificationCodeRepository) IncrementAttempts(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE verification_codes
		SET attempts = attempts + 1
		WHERE id = $1
		AND is_used = FALSE
		AND attempts < max_attempts
	`
	return r.execSwap(ctx, query, id)
}

// DeleteExpired removes used and unused codes whose expiry has passed.
func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *verificationCodeRepository) execSwap(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
