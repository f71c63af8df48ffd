package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubAvatarStorage struct {
	uploadURL   string
	uploadErr   error
	deleteErr   error
	lastPath    string
	lastType    string
	deletedURLs []string
}

func (s *stubAvatarStorage) Upload(_ context.Context, _ []byte, contentType, objectPath string) (string, error) {
	s.lastPath = objectPath
	s.lastType = contentType
	return s.uploadURL, s.uploadErr
}

func (s *stubAvatarStorage) Delete(_ context.Context, publicURL string) error {
	s.deletedURLs = append(s.deletedURLs, publicURL)
	return s.deleteErr
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestProfileServiceUpdateNameAndLocale(t *testing.T) {
	profiles := newStubProfiles(athleteProfile(athleteA, "a@example.com"))
	service := NewProfileService(profiles, nil)
	ctx := context.Background()

	profile, err := service.UpdateName(ctx, athleteA, "  Ana  ")
	if err != nil || profile.Name != "Ana" {
		t.Fatalf("expected trimmed name, got %+v err=%v", profile, err)
	}
	if _, err := service.UpdateName(ctx, athleteA, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	profile, err = service.UpdateLocale(ctx, athleteA, "ES")
	if err != nil || profile.Locale != "es" {
		t.Fatalf("expected es locale, got %+v err=%v", profile, err)
	}
	if _, err := service.UpdateLocale(ctx, athleteA, "fr"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileServiceUploadAvatarWithoutStorage(t *testing.T) {
	service := NewProfileService(newStubProfiles(), nil)

	if _, err := service.UploadAvatar(context.Background(), athleteA, pngHeader); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestProfileServiceUploadAvatarReplacesOldImage(t *testing.T) {
	old := "https://storage/old.png"
	athlete := athleteProfile(athleteA, "a@example.com")
	athlete.AvatarURL = &old
	profiles := newStubProfiles(athlete)
	storage := &stubAvatarStorage{uploadURL: "https://storage/new.png"}
	service := NewProfileService(profiles, storage)

	profile, err := service.UploadAvatar(context.Background(), athleteA, pngHeader)
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if profile.AvatarURL == nil || *profile.AvatarURL != "https://storage/new.png" {
		t.Fatalf("unexpected avatar %+v", profile.AvatarURL)
	}
	if storage.lastType != "image/png" || !strings.HasPrefix(storage.lastPath, "avatars/"+athleteA+"/") || !strings.HasSuffix(storage.lastPath, ".png") {
		t.Fatalf("unexpected upload %q %q", storage.lastType, storage.lastPath)
	}
	if len(storage.deletedURLs) != 1 || storage.deletedURLs[0] != old {
		t.Fatalf("expected old avatar removal, got %v", storage.deletedURLs)
	}
}

func TestProfileServiceUploadAvatarRejectsNonImages(t *testing.T) {
	service := NewProfileService(newStubProfiles(athleteProfile(athleteA, "a@example.com")), &stubAvatarStorage{})

	if _, err := service.UploadAvatar(context.Background(), athleteA, []byte("plain text")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.UploadAvatar(context.Background(), athleteA, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty upload, got %v", err)
	}
}

func TestProfileServiceUploadAvatarIgnoresOldImageCleanupFailure(t *testing.T) {
	old := "https://storage/old.png"
	athlete := athleteProfile(athleteA, "a@example.com")
	athlete.AvatarURL = &old
	storage := &stubAvatarStorage{uploadURL: "https://storage/new.png", deleteErr: errors.New("boom")}
	service := NewProfileService(newStubProfiles(athlete), storage)

	if _, err := service.UploadAvatar(context.Background(), athleteA, pngHeader); err != nil {
		t.Fatalf("old avatar cleanup must not fail the upload, got %v", err)
	}
}

func TestProfileServiceGetProfileNotFound(t *testing.T) {
	service := NewProfileService(newStubProfiles(), nil)

	if _, err := service.GetProfile(context.Background(), athleteA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
