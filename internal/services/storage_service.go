package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// StorageService keeps public objects such as avatars.
type StorageService interface {
	Upload(ctx context.Context, content []byte, contentType, objectPath string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// SupabaseStorageService talks to the Supabase storage REST API with the
// service role key.
type SupabaseStorageService struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseStorageService(baseURL, bucket, serviceKey string) *SupabaseStorageService {
	return &SupabaseStorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
	}
}

func (s *SupabaseStorageService) Upload(ctx context.Context, content []byte, contentType, objectPath string) (string, error) {
	objectPath = strings.Trim(path.Clean("/"+objectPath), "/")
	if objectPath == "" {
		return "", fmt.Errorf("upload object: empty path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(objectPath), bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("x-upsert", "true")
	req.Header.Set("Content-Type", contentType)

	if err := s.do(req, "upload object", false); err != nil {
		return "", err
	}
	return s.publicURL(objectPath), nil
}

// Delete removes the object behind a public URL. Missing objects and URLs
// outside the bucket are ignored.
func (s *SupabaseStorageService) Delete(ctx context.Context, publicURL string) error {
	objectPath, ok := s.objectPathFromURL(publicURL)
	if !ok {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(objectPath), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	s.authorize(req)
	return s.do(req, "delete object", true)
}

func (s *SupabaseStorageService) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
}

func (s *SupabaseStorageService) do(req *http.Request, op string, allowNotFound bool) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
	}
	defer resp.Body.Close()

	if allowNotFound && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (s *SupabaseStorageService) objectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *SupabaseStorageService) publicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *SupabaseStorageService) objectPathFromURL(fileURL string) (string, bool) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", false
	}
	prefix := "/storage/v1/object/public/" + s.bucket + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return "", false
	}
	return strings.TrimPrefix(parsed.Path, prefix), true
}
