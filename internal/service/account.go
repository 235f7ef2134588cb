package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/repository"
	"github.com/dreamwise/dreamwise/internal/validation"
)

type CreateAccountParams struct {
	Username string
	Email    string
	Password string
	Profile  *model.Profile
}

type AccountService struct {
	accountRepository repository.AccountRepository
	hasher            *PasswordHasher
	now               func() time.Time

	// dummyHash is compared against when no account matches, so a missing
	// account costs as much time as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(accountRepository repository.AccountRepository, hasher *PasswordHasher) *AccountService {
	return &AccountService{
		accountRepository: accountRepository,
		hasher:            hasher,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks the shape of a new account without touching storage.
func (s *AccountService) Validate(p CreateAccountParams) error {
	err := validation.ValidateUsername(p.Username)
	if err != nil {
		return validationErr("username", err)
	}

	err = validation.ValidateEmail(validation.NormalizeEmail(p.Email))
	if err != nil {
		return validationErr("email", err)
	}

	err = validation.ValidatePassword(p.Password)
	if err != nil {
		return validationErr("password", err)
	}

	if p.Profile != nil {
		err = validateProfile(*p.Profile)
		if err != nil {
			return err
		}
		if strings.HasPrefix(p.Profile.Avatar, avatarPrefix) {
			return validationErr("avatar", errors.New("stored avatars are set by upload"))
		}
	}

	return nil
}

// Create validates, hashes the password and stores a new account.
// Duplicate usernames or emails are reported by the storage constraint.
func (s *AccountService) Create(ctx context.Context, p CreateAccountParams) (*model.Account, error) {
	err := s.Validate(p)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, err
	}

	account := model.NewAccount(uuid.NewString(), p.Username, validation.NormalizeEmail(p.Email), s.now())
	account.PasswordHash = hash
	if p.Profile != nil {
		account.Profile = normalizeProfile(*p.Profile)
	}
	if account.Interests == nil {
		account.Interests = model.Interests{}
	}

	err = s.accountRepository.Create(ctx, account)
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, storageErr("create account", err)
	}

	slog.Info("account created", "account_id", account.ID, "username", account.Username)
	return account, nil
}

func (s *AccountService) ByID(ctx context.Context, id string) (*model.Account, error) {
	return s.lookup(s.accountRepository.ByID(ctx, id))
}

func (s *AccountService) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.lookup(s.accountRepository.ByEmail(ctx, validation.NormalizeEmail(email)))
}

func (s *AccountService) ByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.lookup(s.accountRepository.ByUsername(ctx, username))
}

func (s *AccountService) lookup(account *model.Account, err error) (*model.Account, error) {
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, storageErr("get account", err)
	}
	return account, nil
}

// Authenticate returns the account for valid credentials. A missing account,
// an inactive account and a wrong password all yield ErrAuthFailure.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.ByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		_, _ = s.hasher.Verify(password, s.fakeHash())
		return nil, ErrAuthFailure
	}
	if err != nil {
		return nil, err
	}

	if !account.IsActive {
		_, _ = s.hasher.Verify(password, s.fakeHash())
		return nil, ErrAuthFailure
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		slog.Error("corrupted password hash", "account_id", account.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, ErrAuthFailure
	}

	s.TouchLastActive(ctx, account.ID)
	return account, nil
}

func (s *AccountService) fakeHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

// ChangePassword replaces the stored hash. Proof of ownership (old password
// or a verified code) is the caller's job.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, newPassword string) error {
	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return validationErr("password", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.accountRepository.UpdatePasswordHash(ctx, accountID, hash, s.now())
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return storageErr("update password", err)
	}

	slog.Info("password changed", "account_id", accountID)
	return nil
}

// TouchLastActive records activity. It is best-effort: failures are logged, never returned.
func (s *AccountService) TouchLastActive(ctx context.Context, accountID string) {
	err := s.accountRepository.TouchLastActive(ctx, accountID, s.now())
	if err != nil {
		slog.Warn("failed to touch last active", "account_id", accountID, "error", err)
	}
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, profile model.Profile) (*model.Account, error) {
	err := validateProfile(profile)
	if err != nil {
		return nil, err
	}

	err = s.accountRepository.UpdateProfile(ctx, accountID, normalizeProfile(profile), s.now())
	if err != nil {
		return nil, s.mutationErr("update profile", err)
	}

	return s.ByID(ctx, accountID)
}

func (s *AccountService) UpdatePreferences(ctx context.Context, accountID string, prefs model.Preferences) (*model.Account, error) {
	if !prefs.ProfileVisibility.Valid() {
		return nil, validationErr("profileVisibility", fmt.Errorf("must be public or private"))
	}
	if !prefs.JournalVisibility.Valid() {
		return nil, validationErr("journalVisibility", fmt.Errorf("must be public or private"))
	}

	err := s.accountRepository.UpdatePreferences(ctx, accountID, prefs, s.now())
	if err != nil {
		return nil, s.mutationErr("update preferences", err)
	}

	return s.ByID(ctx, accountID)
}

// Deactivate soft-deletes an account. It can no longer authenticate.
func (s *AccountService) Deactivate(ctx context.Context, accountID string) error {
	err := s.accountRepository.SetActive(ctx, accountID, false, s.now())
	if err != nil {
		return s.mutationErr("deactivate account", err)
	}

	slog.Info("account deactivated", "account_id", accountID)
	return nil
}

func (s *AccountService) Reactivate(ctx context.Context, accountID string) error {
	err := s.accountRepository.SetActive(ctx, accountID, true, s.now())
	if err != nil {
		return s.mutationErr("reactivate account", err)
	}

	slog.Info("account reactivated", "account_id", accountID)
	return nil
}

// SetRole stores a role. Authorizing who may call it is outside this service.
func (s *AccountService) SetRole(ctx context.Context, accountID string, role model.Role) error {
	if !role.Valid() {
		return validationErr("role", fmt.Errorf("unknown role %q", role))
	}

	err := s.accountRepository.SetRole(ctx, accountID, role, s.now())
	if err != nil {
		return s.mutationErr("set role", err)
	}

	slog.Info("account role changed", "account_id", accountID, "role", role)
	return nil
}

// RecordActivity bumps one of the dream, post or comment counters.
func (s *AccountService) RecordActivity(ctx context.Context, accountID string, stat model.Stat) error {
	if !stat.Valid() {
		return validationErr("stat", fmt.Errorf("unknown stat %q", stat))
	}

	err := s.accountRepository.IncrementStat(ctx, accountID, stat, s.now())
	if err != nil {
		return s.mutationErr("record activity", err)
	}

	return nil
}

func (s *AccountService) mutationErr(op string, err error) error {
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrAccountNotFound
	}
	return storageErr(op, err)
}

func validateProfile(p model.Profile) error {
	err := validation.ValidateProfileText(p.DisplayName, p.Bio, p.SpiritualBackground, p.DreamingExperience)
	if err != nil {
		return validationErr("profile", err)
	}

	err = validation.ValidateInterests(p.Interests)
	if err != nil {
		return validationErr("interests", err)
	}

	return nil
}

func normalizeProfile(p model.Profile) model.Profile {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	interests := make(model.Interests, 0, len(p.Interests))
	for _, interest := range p.Interests {
		interests = append(interests, strings.TrimSpace(interest))
	}
	p.Interests = interests
	return p
}
