package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize bounds profile pictures and recipe images
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is implemented by config.S3Config
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// Upload is an image received from a multipart form
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func validateUpload(field string, u *Upload) error {
	if u == nil || u.Body == nil {
		return fieldError(field, "No file was submitted.")
	}
	if u.Size == 0 {
		return fieldError(field, "The submitted file is empty.")
	}
	if u.Size > MaxImageSize {
		return fieldError(field, fmt.Sprintf("Image must be at most %d MB.", MaxImageSize>>20))
	}
	if _, ok := imageExtensions[normalizeContentType(u.ContentType)]; !ok {
		return fieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return nil
}

// storeImage writes u under prefix/owner/ and returns its public URL
func storeImage(ctx context.Context, store ObjectStore, prefix string, owner uuid.UUID, u *Upload) (string, error) {
	if store == nil {
		return "", ErrStorage
	}
	ct := normalizeContentType(u.ContentType)
	key := path.Join(prefix, owner.String(), uuid.NewString()+imageExtensions[ct])
	url, err := store.Put(ctx, key, ct, u.Body, u.Size)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w: %w", ErrStorage, err)
	}
	return url, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}
