package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dreamwise/dreamwise/internal/model"
)

const accountColumns = `
	id, username, email, password_hash,
	display_name, bio, avatar, spiritual_background, dreaming_experience, interests,
	email_notifications, community_updates, dream_reminders, profile_visibility, journal_visibility,
	total_dreams, total_posts, total_comments, joined_at, last_active,
	is_active, role, created_at, updated_at`

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	ByID(ctx context.Context, id string) (*model.Account, error)
	ByEmail(ctx context.Context, email string) (*model.Account, error)
	ByUsername(ctx context.Context, username string) (*model.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error
	TouchLastActive(ctx context.Context, id string, now time.Time) error
	UpdateProfile(ctx context.Context, id string, profile model.Profile, now time.Time) error
	UpdatePreferences(ctx context.Context, id string, prefs model.Preferences, now time.Time) error
	SetActive(ctx context.Context, id string, active bool, now time.Time) error
	SetRole(ctx context.Context, id string, role model.Role, now time.Time) error
	IncrementStat(ctx context.Context, id string, stat model.Stat, now time.Time) error
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. Username and email uniqueness is enforced by
// the table constraints, so concurrent creates cannot both succeed.
func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20,
		$21, $22, $23, $24)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash,
		a.DisplayName, a.Bio, a.Avatar, a.SpiritualBackground, a.DreamingExperience, a.Interests,
		a.EmailNotifications, a.CommunityUpdates, a.DreamReminders, a.ProfileVisibility, a.JournalVisibility,
		a.TotalDreams, a.TotalPosts, a.TotalComments, a.JoinedAt, a.LastActive,
		a.IsActive, a.Role, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return accountConflict(err)
	}

	return nil
}

func (r *accountRepository) ByID(ctx context.Context, id string) (*model.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *accountRepository) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *accountRepository) ByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.getBy(ctx, "username", username)
}

// getBy loads one account by a unique column. column is never user input.
func (r *accountRepository) getBy(ctx context.Context, column, value string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = $1`

	err := r.db.GetContext(ctx, account, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, query, hash, now, id)
}

func (r *accountRepository) TouchLastActive(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE accounts SET last_active = $1 WHERE id = $2`
	return r.execOne(ctx, query, now, id)
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id string, p model.Profile, now time.Time) error {
	query := `
		UPDATE accounts
		SET display_name = $1, bio = $2, avatar = $3, spiritual_background = $4,
		    dreaming_experience = $5, interests = $6, updated_at = $7
		WHERE id = $8
	`
	return r.execOne(ctx, query,
		p.DisplayName, p.Bio, p.Avatar, p.SpiritualBackground,
		p.DreamingExperience, p.Interests, now, id,
	)
}

func (r *accountRepository) UpdatePreferences(ctx context.Context, id string, p model.Preferences, now time.Time) error {
	query := `
		UPDATE accounts
		SET email_notifications = $1, community_updates = $2, dream_reminders = $3,
		    profile_visibility = $4, journal_visibility = $5, updated_at = $6
		WHERE id = $7
	`
	return r.execOne(ctx, query,
		p.EmailNotifications, p.CommunityUpdates, p.DreamReminders,
		p.ProfileVisibility, p.JournalVisibility, now, id,
	)
}

func (r *accountRepository) SetActive(ctx context.Context, id string, active bool, now time.Time) error {
	query := `UPDATE accounts SET is_active = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, query, active, now, id)
}

func (r *accountRepository) SetRole(ctx context.Context, id string, role model.Role, now time.Time) error {
	query := `UPDATE accounts SET role = $1, updated_at = $2 WHERE id = $3`
	return r.execOne(ctx, query, role, now, id)
}

func (r *accountRepository) IncrementStat(ctx context.Context, id string, stat model.Stat, now time.Time) error {
	if !stat.Valid() {
		return fmt.Errorf("unknown stat %q", stat)
	}
	query := `UPDATE accounts SET ` + string(stat) + ` = ` + string(stat) + ` + 1, last_active = $1 WHERE id = $2`
	return r.execOne(ctx, query, now, id)
}

// execOne runs an UPDATE that must hit exactly one account.
func (r *accountRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}
