package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
)

const MaxAvatarBytes = 2 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type profileUpdater interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	UpdatePartial(ctx context.Context, id string, input repository.UpdateProfileInput) (*models.Profile, error)
}

type ProfileService struct {
	profiles profileUpdater
	storage  StorageService
	now      func() time.Time
}

// NewProfileService accepts a nil storage; avatar uploads then report
// ErrStorageUnavailable.
func NewProfileService(profiles profileUpdater, storage StorageService) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		storage:  storage,
		now:      time.Now,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, classifyStoreError("load profile", err)
	}
	return profile, nil
}

func (s *ProfileService) UpdateName(ctx context.Context, userID, name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return nil, fmt.Errorf("name: %w", ErrInvalidInput)
	}
	profile, err := s.profiles.UpdatePartial(ctx, userID, repository.UpdateProfileInput{Name: &name})
	if err != nil {
		return nil, classifyStoreError("update profile", err)
	}
	return profile, nil
}

func (s *ProfileService) UpdateLocale(ctx context.Context, userID, locale string) (*models.Profile, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if !models.IsSupportedLocale(locale) {
		return nil, fmt.Errorf("locale %q: %w", locale, ErrInvalidInput)
	}
	profile, err := s.profiles.UpdatePartial(ctx, userID, repository.UpdateProfileInput{Locale: &locale})
	if err != nil {
		return nil, classifyStoreError("update settings", err)
	}
	return profile, nil
}

// UploadAvatar stores a new image and points the profile at it. The previous
// avatar is removed afterwards; failing to remove it only logs.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, content []byte) (*models.Profile, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if len(content) == 0 || len(content) > MaxAvatarBytes {
		return nil, fmt.Errorf("avatar size: %w", ErrInvalidInput)
	}
	contentType := http.DetectContentType(content)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("avatar type %s: %w", contentType, ErrInvalidInput)
	}

	current, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, classifyStoreError("load profile", err)
	}

	objectPath := fmt.Sprintf("avatars/%s/%d%s", userID, s.now().UnixNano(), ext)
	avatarURL, err := s.storage.Upload(ctx, content, contentType, objectPath)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	updated, err := s.profiles.UpdatePartial(ctx, userID, repository.UpdateProfileInput{AvatarURL: &avatarURL})
	if err != nil {
		updateErr := classifyStoreError("save avatar", err)
		if cleanupErr := s.storage.Delete(ctx, avatarURL); cleanupErr != nil {
			return nil, errors.Join(updateErr, fmt.Errorf("cleanup failed: %w", cleanupErr))
		}
		return nil, updateErr
	}

	if current.AvatarURL != nil && *current.AvatarURL != "" && *current.AvatarURL != avatarURL {
		if err := s.storage.Delete(ctx, *current.AvatarURL); err != nil {
			log.Printf("Failed to delete old avatar for %s: %v", userID, err)
		}
	}
	return updated, nil
}
