package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"dropship-hub/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Store keeps images in any S3-compatible bucket (AWS S3, MinIO, R2)
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	log     *zap.Logger
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	fallback := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		fallback = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	log.Info("S3 storage ready", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicURL(cfg.PublicBaseURL, fallback, ""),
		log:     log,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	object := objectName(folder, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(object),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	s.log.Debug("Image uploaded", zap.String("object", object))
	return s.baseURL + object, nil
}

func (s *S3Store) Close() error { return nil }
