package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/storage"
	"github.com/dreamwise/dreamwise/internal/validation"
)

const avatarPrefix = "avatars/"

var ErrAvatarsDisabled = errors.New("avatar uploads are disabled")

// AvatarService keeps profile avatars in object storage. The profile stores
// the object key, which URL turns into a fetchable link.
type AvatarService struct {
	accountService *AccountService
	storage        storage.Storage
}

// NewAvatarService accepts a nil storage, in which case uploads fail with
// ErrAvatarsDisabled.
func NewAvatarService(accountService *AccountService, storage storage.Storage) *AvatarService {
	return &AvatarService{
		accountService: accountService,
		storage:        storage,
	}
}

func (s *AvatarService) Enabled() bool {
	return s.storage != nil
}

// Upload stores a validated image and points the account's profile at it.
// The previous avatar object is removed on success.
func (s *AvatarService) Upload(ctx context.Context, accountID string, header *multipart.FileHeader) (*model.Account, error) {
	if !s.Enabled() {
		return nil, ErrAvatarsDisabled
	}

	contentType, err := validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return nil, validationErr("avatar", err)
	}

	account, err := s.accountService.ByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := path.Join(avatarPrefix, accountID, uuid.NewString()+ext)

	err = s.storage.Save(ctx, key, contentType, file)
	if err != nil {
		return nil, storageErr("save avatar", err)
	}

	previous := account.Avatar
	profile := account.Profile
	profile.Avatar = key

	updated, err := s.accountService.UpdateProfile(ctx, accountID, profile)
	if err != nil {
		s.remove(ctx, accountID, key)
		return nil, err
	}

	if previous != "" && previous != key {
		s.remove(ctx, accountID, previous)
	}

	slog.Info("avatar updated", "account_id", accountID, "key", key)
	return updated, nil
}

// URL resolves a stored avatar value. Keys of uploaded objects become
// storage URLs; anything else is returned as is.
func (s *AvatarService) URL(ctx context.Context, avatar string) string {
	if !s.Enabled() || !strings.HasPrefix(avatar, avatarPrefix) {
		return avatar
	}
	return s.storage.PublicURL(ctx, avatar)
}

// remove deletes an avatar object owned by the account. Keys outside the
// account's own prefix are left alone.
func (s *AvatarService) remove(ctx context.Context, accountID, key string) {
	if !ownsAvatar(accountID, key) {
		slog.Warn("refusing to delete avatar outside account prefix", "account_id", accountID, "key", key)
		return
	}

	err := s.storage.Delete(ctx, key)
	if err != nil {
		slog.Error("failed to delete avatar from storage", "key", key, "error", err)
	}
}

func ownsAvatar(accountID, key string) bool {
	return accountID != "" && strings.HasPrefix(key, avatarPrefix+accountID+"/")
}
