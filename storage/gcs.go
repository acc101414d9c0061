package storage

import (
	"context"
	"fmt"
	"io"

	"dropship-hub/config"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCSStore keeps images in a Google Cloud Storage bucket
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
	log     *zap.Logger
}

func NewGCSStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Google Cloud Storage: %w", err)
	}

	if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %s is not accessible: %w", cfg.Bucket, err)
	}
	log.Info("Google Cloud Storage ready", zap.String("bucket", cfg.Bucket))

	return &GCSStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicURL(cfg.PublicBaseURL, "https://storage.googleapis.com/"+cfg.Bucket, ""),
		log:     log,
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	object := objectName(folder, contentType)

	writer := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish GCS upload: %w", err)
	}

	url := s.baseURL + object
	s.log.Debug("Image uploaded", zap.String("object", object))
	return url, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
