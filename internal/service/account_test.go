package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamwise/dreamwise/internal/model"
)

func createAccount(t *testing.T, s *services, username, email, password string) *model.Account {
	t.Helper()
	account, err := s.accounts.Create(context.Background(), CreateAccountParams{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return account
}

func TestAccountService_CreateThenAuthenticate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	accounts := []struct{ username, email string }{
		{"bob", "bob@x.com"},
		{"alice", "alice@x.com"},
		{"dream_walker_42", "Walker@Example.org"},
	}

	hashes := map[string]bool{}
	for _, a := range accounts {
		created := createAccount(t, s, a.username, a.email, "Password123")
		assert.NotEqual(t, "Password123", created.PasswordHash)
		assert.False(t, hashes[created.PasswordHash], "hash reused across accounts")
		hashes[created.PasswordHash] = true

		got, err := s.accounts.Authenticate(ctx, a.email, "Password123")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	}
}

func TestAccountService_CreateDefaults(t *testing.T) {
	s := newServices(t)

	account := createAccount(t, s, "bob", " Bob@X.com ", "Password123")

	assert.Equal(t, "bob@x.com", account.Email)
	assert.True(t, account.IsActive)
	assert.Equal(t, model.RoleUser, account.Role)
	assert.Equal(t, model.DefaultPreferences(), account.Preferences)
	assert.Equal(t, s.clock.Now(), account.JoinedAt)
	assert.Equal(t, model.Interests{}, account.Interests)

	stored, err := s.accounts.ByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, account.PasswordHash, stored.PasswordHash)
	assert.True(t, stored.JoinedAt.Equal(account.JoinedAt))
}

func TestAccountService_CreateMergesProfile(t *testing.T) {
	s := newServices(t)

	account, err := s.accounts.Create(context.Background(), CreateAccountParams{
		Username: "luna",
		Email:    "luna@x.com",
		Password: "Password123",
		Profile: &model.Profile{
			DisplayName: "  Luna  ",
			Interests:   model.Interests{"lucid dreaming", " symbols "},
		},
	})
	require.NoError(t, err)

	stored, err := s.accounts.ByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna", stored.DisplayName)
	assert.Equal(t, model.Interests{"lucid dreaming", "symbols"}, stored.Interests)
	assert.Equal(t, model.VisibilityPublic, stored.ProfileVisibility)
}

func TestAccountService_CreateValidation(t *testing.T) {
	s := newServices(t)

	tests := []struct {
		name   string
		params CreateAccountParams
	}{
		{"short username", CreateAccountParams{Username: "ab", Email: "ab@x.com", Password: "Password123"}},
		{"bad username chars", CreateAccountParams{Username: "a b c", Email: "ab@x.com", Password: "Password123"}},
		{"bad email", CreateAccountParams{Username: "abc", Email: "not-an-email", Password: "Password123"}},
		{"short password", CreateAccountParams{Username: "abc", Email: "abc@x.com", Password: "Pw1"}},
		{"password without digit", CreateAccountParams{Username: "abc", Email: "abc@x.com", Password: "Passwordonly"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.accounts.Create(context.Background(), tt.params)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var n int
	require.NoError(t, s.db.Get(&n, `SELECT COUNT(*) FROM accounts`))
	assert.Zero(t, n)
}

func TestAccountService_CreateDuplicates(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	createAccount(t, s, "bob", "bob@x.com", "Password123")

	_, err := s.accounts.Create(ctx, CreateAccountParams{Username: "bob2", Email: "bob@x.com", Password: "OtherPass1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.accounts.Create(ctx, CreateAccountParams{Username: "bob", Email: "other@x.com", Password: "OtherPass1"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = s.accounts.Create(ctx, CreateAccountParams{Username: "bob3", Email: "BOB@X.COM", Password: "OtherPass1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAccountService_AuthenticateFailuresAreUndifferentiated(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")
	createAccount(t, s, "gone", "gone@x.com", "Password123")
	require.NoError(t, s.accounts.Deactivate(ctx, mustByEmail(t, s, "gone@x.com").ID))

	_, wrongPassword := s.accounts.Authenticate(ctx, "bob@x.com", "WrongPass1")
	_, missing := s.accounts.Authenticate(ctx, "nobody@x.com", "Password123")
	_, inactive := s.accounts.Authenticate(ctx, "gone@x.com", "Password123")

	for _, err := range []error{wrongPassword, missing, inactive} {
		require.ErrorIs(t, err, ErrAuthFailure)
		assert.Equal(t, ErrAuthFailure.Error(), err.Error())
	}

	got, err := s.accounts.Authenticate(ctx, "BOB@x.com", "Password123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestAccountService_CreateRejectsStoredAvatarKey(t *testing.T) {
	s := newServices(t)

	_, err := s.accounts.Create(context.Background(), CreateAccountParams{
		Username: "bob",
		Email:    "bob@x.com",
		Password: "Password123",
		Profile:  &model.Profile{Avatar: "avatars/someone/else.png"},
	})
	require.ErrorIs(t, err, ErrValidation)

	account, err := s.accounts.Create(context.Background(), CreateAccountParams{
		Username: "bob",
		Email:    "bob@x.com",
		Password: "Password123",
		Profile:  &model.Profile{Avatar: "https://example.com/me.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/me.png", account.Avatar)
}

func mustByEmail(t *testing.T, s *services, email string) *model.Account {
	t.Helper()
	account, err := s.accounts.ByEmail(context.Background(), email)
	require.NoError(t, err)
	return account
}

func TestAccountService_AuthenticateCorruptedHash(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")
	_, err := s.db.Exec(`UPDATE accounts SET password_hash = 'not-a-bcrypt-hash' WHERE id = $1`, account.ID)
	require.NoError(t, err)

	_, err = s.accounts.Authenticate(ctx, "bob@x.com", "Password123")
	assert.ErrorIs(t, err, ErrCorruptedHash)
	assert.NotErrorIs(t, err, ErrAuthFailure)
}

func TestAccountService_AuthenticateInactiveWithCorruptedHash(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")
	require.NoError(t, s.accounts.Deactivate(ctx, account.ID))
	_, err := s.db.Exec(`UPDATE accounts SET password_hash = 'not-a-bcrypt-hash' WHERE id = $1`, account.ID)
	require.NoError(t, err)

	_, err = s.accounts.Authenticate(ctx, "bob@x.com", "Password123")
	assert.ErrorIs(t, err, ErrAuthFailure)
	assert.NotErrorIs(t, err, ErrCorruptedHash)
}

func TestAccountService_AuthenticateTouchesLastActive(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")
	s.clock.Advance(time.Hour)

	_, err := s.accounts.Authenticate(ctx, "bob@x.com", "Password123")
	require.NoError(t, err)

	stored := mustByEmail(t, s, "bob@x.com")
	assert.True(t, stored.LastActive.Equal(account.LastActive.Add(time.Hour)))
}

func TestAccountService_ChangePassword(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")

	err := s.accounts.ChangePassword(ctx, account.ID, "short")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, s.accounts.ChangePassword(ctx, account.ID, "NewPassword456"))

	_, err = s.accounts.Authenticate(ctx, "bob@x.com", "Password123")
	assert.ErrorIs(t, err, ErrAuthFailure)

	_, err = s.accounts.Authenticate(ctx, "bob@x.com", "NewPassword456")
	assert.NoError(t, err)

	stored := mustByEmail(t, s, "bob@x.com")
	assert.NotEqual(t, "NewPassword456", stored.PasswordHash)

	err = s.accounts.ChangePassword(ctx, "missing-id", "NewPassword456")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountService_TouchLastActiveMissingAccount(t *testing.T) {
	s := newServices(t)

	assert.NotPanics(t, func() {
		s.accounts.TouchLastActive(context.Background(), "missing-id")
	})
}

func TestAccountService_Lookups(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")

	byID, err := s.accounts.ByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)

	_, err = s.accounts.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = s.accounts.ByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountService_UpdateProfileAndPreferences(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")

	updated, err := s.accounts.UpdateProfile(ctx, account.ID, model.Profile{
		DisplayName: "Bob",
		Bio:         "I dream in color.",
		Interests:   model.Interests{"flying"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.DisplayName)
	assert.Equal(t, model.Interests{"flying"}, updated.Interests)

	prefs := updated.Preferences
	prefs.ProfileVisibility = model.VisibilityPrivate
	prefs.DreamReminders = true
	updated, err = s.accounts.UpdatePreferences(ctx, account.ID, prefs)
	require.NoError(t, err)
	assert.Equal(t, model.VisibilityPrivate, updated.ProfileVisibility)
	assert.True(t, updated.DreamReminders)
	assert.False(t, updated.IsPublic())

	prefs.JournalVisibility = "friends"
	_, err = s.accounts.UpdatePreferences(ctx, account.ID, prefs)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.accounts.UpdateProfile(ctx, "missing-id", model.Profile{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountService_DeactivateReactivate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")

	require.NoError(t, s.accounts.Deactivate(ctx, account.ID))
	stored := mustByEmail(t, s, "bob@x.com")
	assert.False(t, stored.IsActive)

	_, err := s.accounts.Authenticate(ctx, "bob@x.com", "Password123")
	assert.ErrorIs(t, err, ErrAuthFailure)

	require.NoError(t, s.accounts.Reactivate(ctx, account.ID))
	_, err = s.accounts.Authenticate(ctx, "bob@x.com", "Password123")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.accounts.Deactivate(ctx, "missing-id"), ErrAccountNotFound)
}

func TestAccountService_SetRole(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")

	require.NoError(t, s.accounts.SetRole(ctx, account.ID, model.RoleModerator))
	assert.Equal(t, model.RoleModerator, mustByEmail(t, s, "bob@x.com").Role)

	assert.ErrorIs(t, s.accounts.SetRole(ctx, account.ID, "superuser"), ErrValidation)
}

func TestAccountService_RecordActivity(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	account := createAccount(t, s, "bob", "bob@x.com", "Password123")

	require.NoError(t, s.accounts.RecordActivity(ctx, account.ID, model.StatDreams))
	require.NoError(t, s.accounts.RecordActivity(ctx, account.ID, model.StatDreams))
	require.NoError(t, s.accounts.RecordActivity(ctx, account.ID, model.StatComments))

	stored := mustByEmail(t, s, "bob@x.com")
	assert.Equal(t, 2, stored.TotalDreams)
	assert.Equal(t, 0, stored.TotalPosts)
	assert.Equal(t, 1, stored.TotalComments)

	assert.ErrorIs(t, s.accounts.RecordActivity(ctx, account.ID, "likes"), ErrValidation)
}
