package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"dropship-hub/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStore uploads images and returns their public URL
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error)
	Close() error
}

// New opens the image store selected by cfg.Provider
func New(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (ImageStore, error) {
	switch cfg.Provider {
	case "gcs":
		return NewGCSStore(ctx, cfg, log)
	case "s3":
		return NewS3Store(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpeg"
	}
}

// objectName keeps uploads unique with a uuid and a nanosecond timestamp
func objectName(folder, contentType string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "misc"
	}
	return fmt.Sprintf("%s/%s_%d.%s", folder, uuid.NewString(), time.Now().UnixNano(), extensionFor(contentType))
}

func publicURL(base, fallback, object string) string {
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/") + "/" + object
}
