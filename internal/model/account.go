package model

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	Profile
	Preferences
	Stats
}

// NewAccount returns an account with default profile, preferences and stats.
// The caller sets the password hash.
func NewAccount(id, username, email string, now time.Time) *Account {
	return &Account{
		ID:          id,
		Username:    username,
		Email:       email,
		IsActive:    true,
		Role:        RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: DefaultPreferences(),
		Stats: Stats{
			JoinedAt:   now,
			LastActive: now,
		},
	}
}

// IsPublic reports whether the profile may be shown to other users.
func (a *Account) IsPublic() bool {
	return a.IsActive && a.ProfileVisibility == VisibilityPublic
}
