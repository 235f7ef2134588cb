package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamwise/dreamwise/internal/db/dbtest"
	"github.com/dreamwise/dreamwise/internal/model"
)

func newTestCode(email, code string, purpose model.Purpose, createdAt time.Time, ttl time.Duration) *model.VerificationCode {
	return &model.VerificationCode{
		ID:          uuid.NewString(),
		Email:       email,
		Code:        code,
		Purpose:     purpose,
		MaxAttempts: model.DefaultMaxAttempts,
		ExpiresAt:   createdAt.Add(ttl),
		CreatedAt:   createdAt,
	}
}

func countUnused(t *testing.T, database *sqlx.DB, email string, purpose model.Purpose) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n,
		`SELECT COUNT(*) FROM verification_codes WHERE email = $1 AND purpose = $2 AND is_used = FALSE`,
		email, purpose))
	return n
}

func TestVerificationCodeRepository_ReplaceKeepsOneUnusedPerPair(t *testing.T) {
	database := dbtest.New(t)
	repo := NewVerificationCodeRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	first := newTestCode("a@x.com", "111111", model.PurposeRegistration, now, 10*time.Minute)
	second := newTestCode("a@x.com", "222222", model.PurposeRegistration, now.Add(time.Second), 10*time.Minute)
	other := newTestCode("a@x.com", "333333", model.PurposePasswordReset, now, 10*time.Minute)

	require.NoError(t, repo.Replace(ctx, first))
	require.NoError(t, repo.Replace(ctx, other))
	require.NoError(t, repo.Replace(ctx, second))

	assert.Equal(t, 1, countUnused(t, database, "a@x.com", model.PurposeRegistration))
	assert.Equal(t, 1, countUnused(t, database, "a@x.com", model.PurposePasswordReset))

	latest, err := repo.Latest(ctx, "a@x.com", model.PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "222222", latest.Code)

	_, err = repo.ByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerificationCodeRepository_ConcurrentReplace(t *testing.T) {
	database := dbtest.New(t)
	repo := NewVerificationCodeRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newTestCode("race@x.com", "000000", model.PurposeRegistration, now.Add(time.Duration(i)*time.Millisecond), time.Minute)
			assert.NoError(t, repo.Replace(ctx, c))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, countUnused(t, database, "race@x.com", model.PurposeRegistration))
}

func TestVerificationCodeRepository_Latest_NotFound(t *testing.T) {
	repo := NewVerificationCodeRepository(dbtest.New(t))

	_, err := repo.Latest(context.Background(), "nobody@x.com", model.PurposeRegistration)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerificationCodeRepository_MarkUsed(t *testing.T) {
	repo := NewVerificationCodeRepository(dbtest.New(t))
	ctx := context.Background()
	now := time.Now().UTC()

	c := newTestCode("a@x.com", "123456", model.PurposeRegistration, now, 10*time.Minute)
	require.NoError(t, repo.Replace(ctx, c))

	ok, err := repo.MarkUsed(ctx, c.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkUsed(ctx, c.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "a used code cannot be consumed twice")

	got, err := repo.ByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsUsed)
	require.NotNil(t, got.UsedAt)

	_, err = repo.Latest(ctx, "a@x.com", model.PurposeRegistration)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerificationCodeRepository_MarkUsed_RefusesExpired(t *testing.T) {
	repo := NewVerificationCodeRepository(dbtest.New(t))
	ctx := context.Background()
	now := time.Now().UTC()

	c := newTestCode("a@x.com", "123456", model.PurposeRegistration, now.Add(-time.Hour), 10*time.Minute)
	require.NoError(t, repo.Replace(ctx, c))

	ok, err := repo.MarkUsed(ctx, c.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationCodeRepository_IncrementAttemptsStopsAtMax(t *testing.T) {
	repo := NewVerificationCodeRepository(dbtest.New(t))
	ctx := context.Background()
	now := time.Now().UTC()

	c := newTestCode("a@x.com", "123456", model.PurposeRegistration, now, 10*time.Minute)
	require.NoError(t, repo.Replace(ctx, c))

	for i := 0; i < model.DefaultMaxAttempts; i++ {
		ok, err := repo.IncrementAttempts(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.IncrementAttempts(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.ByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxAttempts, got.Attempts)
	assert.True(t, got.IsLocked())

	ok, err = repo.MarkUsed(ctx, c.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "a locked code cannot be consumed")
}

func TestVerificationCodeRepository_DeleteExpired(t *testing.T) {
	repo := NewVerificationCodeRepository(dbtest.New(t))
	ctx := context.Background()
	now := time.Now().UTC()

	expiredUnused := newTestCode("a@x.com", "111111", model.PurposeRegistration, now.Add(-time.Hour), 10*time.Minute)
	expiredUsed := newTestCode("b@x.com", "222222", model.PurposePasswordReset, now.Add(-time.Hour), 10*time.Minute)
	live := newTestCode("c@x.com", "333333", model.PurposeRegistration, now, 10*time.Minute)
	for _, c := range []*model.VerificationCode{expiredUnused, expiredUsed, live} {
		require.NoError(t, repo.Replace(ctx, c))
	}
	ok, err := repo.MarkUsed(ctx, expiredUsed.ID, now.Add(-55*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.ByID(ctx, live.ID)
	assert.NoError(t, err)
	_, err = repo.ByID(ctx, expiredUnused.ID)
	assert.ErrorIs(t, err, ErrCodeNotFound)
	_, err = repo.ByID(ctx, expiredUsed.ID)
	assert.ErrorIs(t, err, ErrCodeNotFound)

	n, err = repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
