package storage

import (
	"bytes"
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/brightstart/screening-api/internal/config"
)

// Service keeps archival copies of submitted photos in Supabase storage.
type Service struct {
	client *storage_go.Client
	bucket string
}

func NewService(cfg config.SupabaseConfig) (*Service, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase storage not configured")
	}

	client := storage_go.NewClient(cfg.URL+"/storage/v1", cfg.Key, nil)

	return &Service{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Save uploads the original bytes under the archive filename and returns the
// public URL used as the record's image reference.
func (s *Service) Save(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	_, err := s.client.UploadFile(s.bucket, filename, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload to supabase: %w", err)
	}

	publicURL := s.client.GetPublicUrl(s.bucket, filename)
	return publicURL.SignedURL, nil
}

// Delete removes a stored copy, used when its record is deleted.
func (s *Service) Delete(ctx context.Context, filename string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{filename})
	if err != nil {
		return fmt.Errorf("remove from supabase: %w", err)
	}
	return nil
}

// HealthCheck reports whether the bucket is reachable.
func (s *Service) HealthCheck(ctx context.Context) string {
	_, err := s.client.ListFiles(s.bucket, "", storage_go.FileSearchOptions{})
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}
