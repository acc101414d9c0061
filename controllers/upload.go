package controllers

import (
	"context"
	"mime/multipart"

	"dropship-hub/services"
	"dropship-hub/storage"
)

const maxImageSize = 5 << 20

// uploadImage resizes an uploaded image and stores it under folder
func uploadImage(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	if fh.Size > maxImageSize {
		return "", services.Invalid("Image must be 5MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return "", services.Invalid("Failed to open image")
	}
	defer f.Close()

	width := 0
	if deps.Config != nil {
		width = deps.Config.Storage.ThumbnailWidth
	}
	buf, contentType, err := storage.PrepareImage(f, fh.Header.Get("Content-Type"), width)
	if err != nil {
		return "", services.Invalid("Unsupported image file")
	}
	return deps.Images.Upload(ctx, buf, contentType, folder)
}
